package pdfrenderer

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/gen2brain/go-fitz"
)

// FitzEngine implements PDF rendering using go-fitz (requires CGo and MuPDF)
type FitzEngine struct {
}

// NewFitzEngine creates a new Fitz-based PDF engine
func NewFitzEngine() (*FitzEngine, error) {
	return &FitzEngine{}, nil
}

// Name of the backend
func (e *FitzEngine) Name() string { return EngineFitz }

// Open reads the source into MuPDF and builds the page tree used for geometry
func (e *FitzEngine) Open(ctx context.Context, src Source) (Document, error) {
	data, err := io.ReadAll(io.NewSectionReader(src.Reader, 0, src.Size))
	if err != nil {
		return nil, fmt.Errorf("unable to read PDF stream: %w", err)
	}
	tree, err := newPageTree(src.Reader, src.Size, src.Password)
	if err != nil {
		return nil, err
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("unable to open PDF document: %w", err)
	}
	Logger.Debug("Opened document with MuPDF", "name", src.Name, "pages", doc.NumPage())
	return &fitzDocument{doc: doc, tree: tree}, nil
}

// Close is a no-op, MuPDF contexts live with their documents
func (e *FitzEngine) Close() error {
	return nil
}

type fitzDocument struct {
	mu   sync.Mutex
	doc  *fitz.Document
	tree *pageTree
}

func (d *fitzDocument) PageCount() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.NumPage(), nil
}

func (d *fitzDocument) Geometry(page int) (PageGeometry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := checkPage(page, d.doc.NumPage()); err != nil {
		return PageGeometry{}, err
	}
	return d.tree.geometry(page)
}

// Rasterize renders the page bound (the crop box) with MuPDF. A media box
// request pads the crop box raster, MuPDF never draws outside the crop box.
func (d *fitzDocument) Rasterize(ctx context.Context, page int, opts RasterOptions) (*image.NRGBA, error) {
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	geo, err := d.Geometry(page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	img, err := d.doc.ImageDPI(page, baseDPI(opts))
	d.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("unable to render page %d: %w", page, err)
	}

	var base image.Image = img
	if opts.UseMediaBox && geo.MediaBox != geo.CropBox {
		base = padToBox(img, geo.MediaBox, geo.CropBox, geo.Rotation)
	}
	return finishRaster(base, geo, opts), nil
}

func (d *fitzDocument) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Close()
}
