package binding

import (
	"fmt"
	"sync"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
)

// RenderConfig is the per-document render configuration. It is read on every
// render call, so changes apply to the next call without reopening.
type RenderConfig struct {
	HDPI        float64 `json:"hdpi"`
	VDPI        float64 `json:"vdpi"`
	Rotate      int     `json:"rotate"`
	UseMediaBox bool    `json:"useMediaBox"`
	Crop        bool    `json:"crop"`
}

// DefaultRenderConfig is 72 DPI in both directions, no rotation, crop box output
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{HDPI: 72, VDPI: 72}
}

func (c RenderConfig) rasterOptions() pdfrenderer.RasterOptions {
	return pdfrenderer.RasterOptions{
		HDPI:        c.HDPI,
		VDPI:        c.VDPI,
		Rotate:      c.Rotate,
		UseMediaBox: c.UseMediaBox,
		Crop:        c.Crop,
	}
}

// Validate checks DPI and rotation
func (c RenderConfig) Validate() error {
	if err := pdfrenderer.ValidateOptions(c.rasterOptions()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Document is the managed object that owns one document handle.
// The zero value behaves like a Document on the null handle.
type Document struct {
	bridge *Bridge
	handle Handle

	mu     sync.Mutex
	config RenderConfig
}

// Handle returns the document's handle, NullHandle for a nil Document
func (d *Document) Handle() Handle {
	if d == nil {
		return NullHandle
	}
	return d.handle
}

// Config returns a copy of the current render configuration
func (d *Document) Config() RenderConfig {
	if d == nil {
		return DefaultRenderConfig()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.config
}

// SetConfig replaces the whole render configuration
func (d *Document) SetConfig(cfg RenderConfig) error {
	if d == nil {
		return ErrInvalidHandle
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.config = cfg
	d.mu.Unlock()
	return nil
}

func (d *Document) update(fn func(*RenderConfig)) error {
	if d == nil {
		return ErrInvalidHandle
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	cfg := d.config
	fn(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.config = cfg
	return nil
}

// SetUseMediaBox selects the media box instead of the crop box as output area
func (d *Document) SetUseMediaBox(on bool) error {
	return d.update(func(c *RenderConfig) { c.UseMediaBox = on })
}

// SetCrop clips media box output to the crop box
func (d *Document) SetCrop(on bool) error {
	return d.update(func(c *RenderConfig) { c.Crop = on })
}

func (d *Document) SetXDPI(dpi float64) error {
	return d.update(func(c *RenderConfig) { c.HDPI = dpi })
}

func (d *Document) SetYDPI(dpi float64) error {
	return d.update(func(c *RenderConfig) { c.VDPI = dpi })
}

// SetRotate sets the extra clockwise rotation, one of 0, 90, 180, 270
func (d *Document) SetRotate(deg int) error {
	return d.update(func(c *RenderConfig) { c.Rotate = deg })
}

// live resolves the handle to an entry that opened successfully
func (d *Document) live() (*entry, error) {
	if d == nil || d.bridge == nil {
		return nil, ErrInvalidHandle
	}
	e, err := d.bridge.resolve(d.handle)
	if err != nil {
		return nil, err
	}
	if e.openErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHandle, e.openErr)
	}
	if e.doc == nil {
		return nil, ErrInvalidHandle
	}
	return e, nil
}

// IsValid reports whether the document opened and parsed without a fatal
// error and the handle has not been closed
func (d *Document) IsValid() bool {
	e, err := d.live()
	return err == nil && e.valid()
}

// OpenError explains why the handle is not valid, nil when it is
func (d *Document) OpenError() error {
	_, err := d.live()
	return err
}

// withDoc runs fn with the engine document while holding the entry lock
func (d *Document) withDoc(fn func(doc pdfrenderer.Document) error) error {
	e, err := d.live()
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		return ErrHandleClosed
	}
	return engineError(fn(e.doc))
}

func (d *Document) geometry(page int) (pdfrenderer.PageGeometry, error) {
	var geo pdfrenderer.PageGeometry
	err := d.withDoc(func(doc pdfrenderer.Document) error {
		var err error
		geo, err = doc.Geometry(page)
		return err
	})
	return geo, err
}

// GetPageMediaWidth returns the media box width of page in points
func (d *Document) GetPageMediaWidth(page int) (float64, error) {
	geo, err := d.geometry(page)
	return geo.MediaBox.Width(), err
}

// GetPageMediaHeight returns the media box height of page in points
func (d *Document) GetPageMediaHeight(page int) (float64, error) {
	geo, err := d.geometry(page)
	return geo.MediaBox.Height(), err
}

// GetPageCropWidth returns the crop box width of page in points
func (d *Document) GetPageCropWidth(page int) (float64, error) {
	geo, err := d.geometry(page)
	return geo.CropBox.Width(), err
}

// GetPageCropHeight returns the crop box height of page in points
func (d *Document) GetPageCropHeight(page int) (float64, error) {
	geo, err := d.geometry(page)
	return geo.CropBox.Height(), err
}

// GetPageRotation returns the page's own rotation, one of 0, 90, 180, 270
func (d *Document) GetPageRotation(page int) (int, error) {
	geo, err := d.geometry(page)
	return geo.Rotation, err
}

// PageGeometry returns all boxes and the rotation of page at once
func (d *Document) PageGeometry(page int) (pdfrenderer.PageGeometry, error) {
	return d.geometry(page)
}

func (d *Document) GetPageCount() (int, error) {
	var count int
	err := d.withDoc(func(doc pdfrenderer.Document) error {
		var err error
		count, err = doc.PageCount()
		return err
	})
	return count, err
}

// Close releases the handle. A second Close returns ErrHandleClosed.
func (d *Document) Close() error {
	if d == nil || d.bridge == nil {
		return ErrInvalidHandle
	}
	return d.bridge.release(d.handle)
}
