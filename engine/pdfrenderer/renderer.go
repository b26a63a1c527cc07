package pdfrenderer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// ErrPageRange is returned (wrapped) when a page index is outside the document
var ErrPageRange = errors.New("page index out of range")

// Engine names accepted by NewEngine
const (
	EnginePDFium = "pdfium"
	EngineFitz   = "fitz"
)

// Box is a page boundary rectangle in PDF points
type Box struct {
	Left, Bottom, Right, Top float64
}

// Width of the box in points
func (b Box) Width() float64 { return b.Right - b.Left }

// Height of the box in points
func (b Box) Height() float64 { return b.Top - b.Bottom }

// Empty reports whether the box has no area
func (b Box) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Intersect returns the largest box contained in both b and o
func (b Box) Intersect(o Box) Box {
	r := Box{
		Left:   max(b.Left, o.Left),
		Bottom: max(b.Bottom, o.Bottom),
		Right:  min(b.Right, o.Right),
		Top:    min(b.Top, o.Top),
	}
	if r.Empty() {
		return Box{}
	}
	return r
}

// PageGeometry holds the page boundaries and the page's own /Rotate value
type PageGeometry struct {
	MediaBox Box
	CropBox  Box
	Rotation int // clockwise degrees, one of 0, 90, 180, 270
}

// RasterOptions is the render configuration forwarded to Rasterize
type RasterOptions struct {
	HDPI        float64
	VDPI        float64
	Rotate      int // additional clockwise rotation applied on top of the page rotation
	UseMediaBox bool
	Crop        bool
}

// Source is the byte stream a document is opened from.
// Readers are positional so several documents can share one underlying file.
type Source struct {
	Name     string
	Reader   io.ReaderAt
	Size     int64
	Password string
}

// Document is an opened PDF inside an engine
type Document interface {
	PageCount() (int, error)
	Geometry(page int) (PageGeometry, error)
	// Rasterize renders the full page with the given options. The page
	// rotation and the extra rotation are both applied.
	Rasterize(ctx context.Context, page int, opts RasterOptions) (*image.NRGBA, error)
	Close() error
}

// Engine opens documents. An engine holds the process-wide state of the
// underlying PDF library and must be closed once when no longer needed.
type Engine interface {
	Name() string
	Open(ctx context.Context, src Source) (Document, error)
	Close() error
}

// Config selects and tunes the engine backend
type Config struct {
	Name         string
	InstanceWait time.Duration // how long to wait for a PDFium instance
}

// NewEngine creates the configured PDF engine (PDFium by default, pure Go via WebAssembly)
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.Name {
	case "", EnginePDFium:
		engine, err := NewPDFiumEngine(cfg)
		if err != nil {
			return nil, err
		}
		return engine, nil
	case EngineFitz:
		engine, err := NewFitzEngine()
		if err != nil {
			return nil, err
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unknown PDF engine %q (supported: %s, %s)", cfg.Name, EnginePDFium, EngineFitz)
	}
}

func checkPage(page, count int) error {
	if page < 0 || page >= count {
		return fmt.Errorf("%w: page %d of %d", ErrPageRange, page, count)
	}
	return nil
}
