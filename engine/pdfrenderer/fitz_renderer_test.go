package pdfrenderer

import (
	"bytes"
	"context"
	"image"
	"testing"

	"github.com/drummonds/pdfbridge/pdftest"
	"github.com/stretchr/testify/require"
)

func openFitz(t *testing.T, data []byte) Document {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping MuPDF test in short mode")
	}
	engine, err := NewEngine(Config{Name: EngineFitz})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, engine.Close()) })

	doc, err := engine.Open(context.Background(), Source{
		Name:   "test.pdf",
		Reader: bytes.NewReader(data),
		Size:   int64(len(data)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, doc.Close()) })
	return doc
}

func isPaper(img *image.NRGBA, x, y int) bool {
	c := img.NRGBAAt(x, y)
	return c.R > 200 && c.G > 200 && c.B > 200
}

func TestFitzGeometry(t *testing.T) {
	crop := pdftest.Box{LLX: 36, LLY: 36, URX: 576, URY: 756}
	doc := openFitz(t, pdftest.Build([]pdftest.Page{
		{MediaBox: pdftest.Letter},
		{MediaBox: pdftest.Letter, CropBox: &crop, Rotate: 90},
	}))

	count, err := doc.PageCount()
	require.NoError(t, err)
	require.Equal(t, 2, count)

	geo, err := doc.Geometry(0)
	require.NoError(t, err)
	require.Equal(t, Box{0, 0, 612, 792}, geo.MediaBox)
	require.Equal(t, geo.MediaBox, geo.CropBox)

	geo, err = doc.Geometry(1)
	require.NoError(t, err)
	require.Equal(t, Box{36, 36, 576, 756}, geo.CropBox)
	require.Equal(t, 90, geo.Rotation)

	_, err = doc.Geometry(2)
	require.ErrorIs(t, err, ErrPageRange)
}

func TestFitzInheritedGeometry(t *testing.T) {
	half := pdftest.Box{LLX: 0, LLY: 396, URX: 306, URY: 792}
	doc := openFitz(t, pdftest.Tree{
		MediaBox: &pdftest.Letter,
		Rotate:   180,
		Pages:    []pdftest.Page{{CropBox: &half}},
	}.Build())

	geo, err := doc.Geometry(0)
	require.NoError(t, err)
	require.Equal(t, Box{0, 0, 612, 792}, geo.MediaBox)
	require.Equal(t, Box{0, 396, 306, 792}, geo.CropBox)
	require.Equal(t, 180, geo.Rotation)
}

func TestFitzRasterize(t *testing.T) {
	doc := openFitz(t, pdftest.Build([]pdftest.Page{
		pdftest.SimplePages(1)[0],
		{MediaBox: pdftest.Letter, Rotate: 90},
	}))

	img, err := doc.Rasterize(context.Background(), 0, RasterOptions{HDPI: 72, VDPI: 72})
	require.NoError(t, err)
	require.Equal(t, image.Pt(612, 792), img.Bounds().Size())
	require.True(t, hasInk(img), "expected the black square to be drawn")

	img, err = doc.Rasterize(context.Background(), 0, RasterOptions{HDPI: 36, VDPI: 72, Rotate: 90})
	require.NoError(t, err)
	require.Equal(t, image.Pt(396, 612), img.Bounds().Size())

	img, err = doc.Rasterize(context.Background(), 1, RasterOptions{HDPI: 72, VDPI: 72})
	require.NoError(t, err)
	require.Equal(t, image.Pt(792, 612), img.Bounds().Size())

	_, err = doc.Rasterize(context.Background(), 0, RasterOptions{HDPI: 0, VDPI: 72})
	require.Error(t, err)
}

// MuPDF only draws the crop box, so a media box render pads it with paper
// and content outside the crop box stays blank
func TestFitzMediaBoxRender(t *testing.T) {
	crop := pdftest.Box{LLX: 0, LLY: 396, URX: 306, URY: 792}
	doc := openFitz(t, pdftest.Build([]pdftest.Page{{
		MediaBox: pdftest.Letter,
		CropBox:  &crop,
		Content: pdftest.FilledRect(72, 600, 144, 144, 0, 0, 0) +
			pdftest.FilledRect(400, 100, 100, 100, 0, 0, 0),
	}}))

	img, err := doc.Rasterize(context.Background(), 0, RasterOptions{HDPI: 72, VDPI: 72})
	require.NoError(t, err)
	require.Equal(t, image.Pt(306, 396), img.Bounds().Size())
	require.False(t, isPaper(img, 144, 120), "square inside the crop box is drawn")

	img, err = doc.Rasterize(context.Background(), 0, RasterOptions{HDPI: 72, VDPI: 72, UseMediaBox: true})
	require.NoError(t, err)
	require.Equal(t, image.Pt(612, 792), img.Bounds().Size())
	require.False(t, isPaper(img, 144, 120), "crop box raster sits at the top left of the media box")
	require.True(t, isPaper(img, 450, 642), "content outside the crop box is not drawn")
	require.True(t, isPaper(img, 600, 780), "padding is paper")
}
