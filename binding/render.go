package binding

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
	"golang.org/x/image/draw"
)

// RenderPage draws one full page onto s at its origin
func (d *Document) RenderPage(ctx context.Context, s draw.Image, page int) error {
	return d.render(ctx, s, OpPage, page, page, nil)
}

// RenderPageRange draws the inclusive page range onto s, stacked top to
// bottom from the surface origin
func (d *Document) RenderPageRange(ctx context.Context, s draw.Image, first, last int) error {
	return d.render(ctx, s, OpRange, first, last, nil)
}

// RenderPageRegion draws the device-pixel rectangle [x, y, x+w, y+h] of the
// rendered page onto s at its origin
func (d *Document) RenderPageRegion(ctx context.Context, s draw.Image, page, x, y, w, h int) error {
	region := image.Rect(x, y, x+w, y+h)
	return d.render(ctx, s, OpRegion, page, page, &region)
}

// render is the single path behind the three entry points. A null, invalid
// or closed handle draws nothing and returns nil.
func (d *Document) render(ctx context.Context, s draw.Image, op RenderOp, first, last int, region *image.Rectangle) error {
	if d == nil || d.bridge == nil {
		return nil
	}
	ev := RenderEvent{
		Handle:    d.handle,
		Op:        op,
		FirstPage: first,
		LastPage:  last,
		Config:    d.Config(),
		StartedAt: time.Now(),
	}
	if region != nil {
		ev.Region = fmt.Sprintf("%d,%d,%d,%d", region.Min.X, region.Min.Y, region.Dx(), region.Dy())
	}
	defer func() {
		ev.Duration = time.Since(ev.StartedAt)
		if err := d.bridge.journal.RecordRender(ev); err != nil {
			Logger.Warn("Unable to journal render", "handle", d.handle, "error", err)
		}
	}()

	e, err := d.live()
	if err != nil || s == nil {
		Logger.Debug("Skipping render", "handle", d.handle, "op", op, "reason", err)
		ev.Status = RenderSkipped
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Load() {
		ev.Status = RenderSkipped
		return nil
	}

	err = drawPages(ctx, e.doc, s, first, last, region, ev.Config.rasterOptions())
	if err != nil {
		ev.Status = RenderFailed
		ev.Err = err.Error()
		Logger.Warn("Render failed", "handle", d.handle, "op", op, "first", first, "last", last, "error", err)
		return err
	}
	ev.Status = RenderCompleted
	return nil
}

// drawPages rasterizes every page before touching the surface so a failure draws nothing
func drawPages(ctx context.Context, doc pdfrenderer.Document, s draw.Image, first, last int, region *image.Rectangle, opts pdfrenderer.RasterOptions) error {
	if last < first {
		return fmt.Errorf("%w: empty range %d..%d", ErrPageIndexOutOfRange, first, last)
	}
	if err := pdfrenderer.ValidateOptions(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	rasters := make([]*image.NRGBA, 0, last-first+1)
	for page := first; page <= last; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		img, err := doc.Rasterize(ctx, page, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return engineError(fmt.Errorf("unable to render page %d: %w", page, err))
		}
		if region != nil {
			img = pdfrenderer.Slice(img, *region)
		}
		rasters = append(rasters, img)
	}

	at := s.Bounds().Min
	for _, img := range rasters {
		if img.Bounds().Empty() {
			continue
		}
		draw.Copy(s, at, img, img.Bounds(), draw.Over, nil)
		at.Y += img.Bounds().Dy()
	}
	return nil
}

// RenderSize returns the surface size RenderPageRange needs for the inclusive
// range with the current configuration: the widest page by the summed heights.
func (d *Document) RenderSize(first, last int) (image.Point, error) {
	if last < first {
		return image.Point{}, fmt.Errorf("%w: empty range %d..%d", ErrPageIndexOutOfRange, first, last)
	}
	opts := d.Config().rasterOptions()
	var size image.Point
	err := d.withDoc(func(doc pdfrenderer.Document) error {
		for page := first; page <= last; page++ {
			geo, err := doc.Geometry(page)
			if err != nil {
				return err
			}
			p := pdfrenderer.PageSize(geo, opts)
			size.X = max(size.X, p.X)
			size.Y += p.Y
		}
		return nil
	})
	return size, err
}

// FitWidthDPI returns the horizontal resolution at which page renders exactly
// widthPx pixels wide with the current rotation and box settings
func (d *Document) FitWidthDPI(page, widthPx int) (float64, error) {
	if widthPx <= 0 {
		return 0, fmt.Errorf("%w: width must be positive, got %d", ErrInvalidConfig, widthPx)
	}
	opts := d.Config().rasterOptions()
	geo, err := d.geometry(page)
	if err != nil {
		return 0, err
	}
	width, _ := pdfrenderer.OutputPoints(geo, opts)
	if width <= 0 {
		return 0, fmt.Errorf("%w: page %d has an empty box", ErrInvalidConfig, page)
	}
	return float64(widthPx) * 72 / width, nil
}

// FitWidth zooms so page fills widthPx pixels. Both resolutions scale by the
// same factor, so the HDPI:VDPI aspect is kept.
func (d *Document) FitWidth(page, widthPx int) error {
	hdpi, err := d.FitWidthDPI(page, widthPx)
	if err != nil {
		return err
	}
	return d.update(func(c *RenderConfig) {
		c.VDPI *= hdpi / c.HDPI
		c.HDPI = hdpi
	})
}
