package pdfrenderer

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/enums"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/klippa-app/go-pdfium/webassembly"
)

// PDFiumEngine implements PDF rendering using go-pdfium with WebAssembly (pure Go, no CGo).
// PDFium is not safe for concurrent use so every call goes through mu.
type PDFiumEngine struct {
	mu       sync.Mutex
	pool     pdfium.Pool
	instance pdfium.Pdfium
}

// NewPDFiumEngine initializes the WebAssembly runtime and takes one PDFium instance from it
func NewPDFiumEngine(cfg Config) (*PDFiumEngine, error) {
	// For single-threaded usage, we keep it simple
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1, // Minimum idle workers
		MaxIdle:  1, // Maximum idle workers
		MaxTotal: 1, // Total worker limit
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PDFium WebAssembly: %w", err)
	}

	wait := cfg.InstanceWait
	if wait <= 0 {
		wait = 30 * time.Second
	}
	instance, err := pool.GetInstance(wait)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to get PDFium instance: %w", err)
	}

	return &PDFiumEngine{
		pool:     pool,
		instance: instance,
	}, nil
}

// Name of the backend
func (e *PDFiumEngine) Name() string { return EnginePDFium }

// Open hands the positional source to PDFium, which reads it lazily for the document's lifetime
func (e *PDFiumEngine) Open(ctx context.Context, src Source) (Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance == nil {
		return nil, fmt.Errorf("PDFium engine is closed")
	}

	req := &requests.OpenDocument{
		FileReader:     io.NewSectionReader(src.Reader, 0, src.Size),
		FileReaderSize: src.Size,
	}
	if src.Password != "" {
		password := src.Password
		req.Password = &password
	}
	doc, err := e.instance.OpenDocument(req)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	Logger.Debug("Opened document with PDFium", "name", src.Name, "size", src.Size)

	// FPDFPage_GetMediaBox and FPDFPage_GetCropBox ignore boxes inherited
	// from the /Pages node, so the page tree is read alongside
	tree, err := newPageTree(src.Reader, src.Size, src.Password)
	if err != nil {
		Logger.Debug("Page tree unavailable, using PDFium page boxes", "name", src.Name, "error", err)
		tree = nil
	}
	return &pdfiumDocument{engine: e, ref: doc.Document, tree: tree}, nil
}

// Close cleans up resources used by the PDFium engine
func (e *PDFiumEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.instance != nil {
		e.instance.Close()
		e.instance = nil
	}
	if e.pool != nil {
		e.pool.Close()
		e.pool = nil
	}
	return nil
}

type pdfiumDocument struct {
	engine *PDFiumEngine
	ref    references.FPDF_DOCUMENT
	tree   *pageTree // nil when ledongthuc/pdf cannot parse the file
	closed bool
}

func (d *pdfiumDocument) page(index int) requests.Page {
	return requests.Page{
		ByIndex: &requests.PageByIndex{
			Document: d.ref,
			Index:    index,
		},
	}
}

// pageCount expects the engine lock to be held
func (d *pdfiumDocument) pageCount() (int, error) {
	if d.closed || d.engine.instance == nil {
		return 0, fmt.Errorf("document is closed")
	}
	resp, err := d.engine.instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: d.ref,
	})
	if err != nil {
		return 0, fmt.Errorf("unable to get page count: %w", err)
	}
	return resp.PageCount, nil
}

func (d *pdfiumDocument) PageCount() (int, error) {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	return d.pageCount()
}

func (d *pdfiumDocument) Geometry(page int) (PageGeometry, error) {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	return d.geometry(page)
}

// geometry expects the engine lock to be held
func (d *pdfiumDocument) geometry(page int) (PageGeometry, error) {
	count, err := d.pageCount()
	if err != nil {
		return PageGeometry{}, err
	}
	if err := checkPage(page, count); err != nil {
		return PageGeometry{}, err
	}
	if d.tree != nil {
		if geo, err := d.tree.geometry(page); err == nil {
			return geo, nil
		}
	}
	instance := d.engine.instance

	rotation, err := instance.FPDFPage_GetRotation(&requests.FPDFPage_GetRotation{Page: d.page(page)})
	if err != nil {
		return PageGeometry{}, fmt.Errorf("unable to get rotation of page %d: %w", page, err)
	}
	geo := PageGeometry{Rotation: rotationDegrees(rotation.PageRotation)}

	if mb, err := instance.FPDFPage_GetMediaBox(&requests.FPDFPage_GetMediaBox{Page: d.page(page)}); err == nil {
		geo.MediaBox = normalizedBox(mb.Left, mb.Bottom, mb.Right, mb.Top)
	}
	if geo.MediaBox.Empty() {
		// No /MediaBox on the page dictionary itself, fall back to the page size
		size, err := instance.GetPageSize(&requests.GetPageSize{Page: d.page(page)})
		if err != nil {
			return PageGeometry{}, fmt.Errorf("unable to get size of page %d: %w", page, err)
		}
		w, h := size.Width, size.Height
		if geo.Rotation == 90 || geo.Rotation == 270 {
			w, h = h, w
		}
		geo.MediaBox = Box{Right: w, Top: h}
	}

	geo.CropBox = geo.MediaBox
	if cb, err := instance.FPDFPage_GetCropBox(&requests.FPDFPage_GetCropBox{Page: d.page(page)}); err == nil {
		if crop := normalizedBox(cb.Left, cb.Bottom, cb.Right, cb.Top).Intersect(geo.MediaBox); !crop.Empty() {
			geo.CropBox = crop
		}
	}
	return geo, nil
}

// Rasterize renders with RenderPageInDPI. PDFium always renders the crop box,
// so a media box request widens the crop box for the duration of the call.
func (d *pdfiumDocument) Rasterize(ctx context.Context, page int, opts RasterOptions) (*image.NRGBA, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()

	geo, err := d.geometry(page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	instance := d.engine.instance

	if opts.UseMediaBox && geo.MediaBox != geo.CropBox {
		if err := d.setCropBox(page, geo.MediaBox); err != nil {
			return nil, err
		}
		defer func() {
			if err := d.setCropBox(page, geo.CropBox); err != nil {
				Logger.Warn("Unable to restore crop box", "page", page, "error", err)
			}
		}()
	}

	render, err := instance.RenderPageInDPI(&requests.RenderPageInDPI{
		DPI:  int(math.Ceil(baseDPI(opts))),
		Page: d.page(page),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", page, err)
	}
	// Copy out of WebAssembly memory before it is released
	base := imaging.Clone(render.Result.Image)
	render.Cleanup()

	return finishRaster(base, geo, opts), nil
}

func (d *pdfiumDocument) setCropBox(page int, b Box) error {
	_, err := d.engine.instance.FPDFPage_SetCropBox(&requests.FPDFPage_SetCropBox{
		Page:   d.page(page),
		Left:   float32(b.Left),
		Bottom: float32(b.Bottom),
		Right:  float32(b.Right),
		Top:    float32(b.Top),
	})
	if err != nil {
		return fmt.Errorf("unable to set crop box of page %d: %w", page, err)
	}
	return nil
}

func (d *pdfiumDocument) Close() error {
	d.engine.mu.Lock()
	defer d.engine.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if d.engine.instance == nil {
		return nil
	}
	_, err := d.engine.instance.FPDF_CloseDocument(&requests.FPDF_CloseDocument{
		Document: d.ref,
	})
	return err
}

func rotationDegrees(r enums.FPDF_PAGE_ROTATION) int {
	switch r {
	case enums.FPDF_PAGE_ROTATION_90_CW:
		return 90
	case enums.FPDF_PAGE_ROTATION_180_CW:
		return 180
	case enums.FPDF_PAGE_ROTATION_270_CW:
		return 270
	}
	return 0
}

func normalizedBox(x0, y0, x1, y1 float32) Box {
	return Box{
		Left:   float64(min(x0, x1)),
		Bottom: float64(min(y0, y1)),
		Right:  float64(max(x0, x1)),
		Top:    float64(max(y0, y1)),
	}
}
