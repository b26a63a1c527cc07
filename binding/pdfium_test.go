package binding

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"testing"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
	"github.com/drummonds/pdfbridge/pdftest"
	"github.com/stretchr/testify/require"
)

func setupPDFiumBridge(t *testing.T) *Bridge {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PDFium WebAssembly test in short mode")
	}
	b := NewBridge(Options{Engine: pdfrenderer.Config{Name: pdfrenderer.EnginePDFium}})
	require.NoError(t, b.Init(context.Background()))
	t.Cleanup(func() { require.NoError(t, b.Close()) })
	return b
}

func whiteSurface(w, h int) *image.NRGBA {
	s := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range s.Pix {
		s.Pix[i] = 255
	}
	return s
}

func countInk(img *image.NRGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if c := img.NRGBAAt(x, y); c.R < 128 && c.G < 128 && c.B < 128 {
				n++
			}
		}
	}
	return n
}

func TestThreePageDocument(t *testing.T) {
	b := setupPDFiumBridge(t)
	path, err := pdftest.WriteFile(t.TempDir(), "three.pdf", pdftest.SimplePages(3))
	require.NoError(t, err)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	doc := b.Open(context.Background(), f.Fd(), "", "")
	defer doc.Close()
	require.True(t, doc.IsValid())

	count, err := doc.GetPageCount()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	rot, err := doc.GetPageRotation(0)
	require.NoError(t, err)
	require.Equal(t, 0, rot)

	w, err := doc.GetPageMediaWidth(0)
	require.NoError(t, err)
	require.InDelta(t, 612, w, 0.01)

	s := whiteSurface(612, 792)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Greater(t, countInk(s), 0, "expected non-background pixels")

	_, err = doc.GetPageCropHeight(3)
	require.ErrorIs(t, err, ErrPageIndexOutOfRange)
}

func TestNonPDFDescriptor(t *testing.T) {
	b := setupPDFiumBridge(t)
	f, err := os.CreateTemp(t.TempDir(), "image-*.gif")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	require.NoError(t, err)

	doc := b.Open(context.Background(), f.Fd(), "", "")
	require.False(t, doc.IsValid())

	s := whiteSurface(50, 50)
	before := bytes.Clone(s.Pix)
	ctx := context.Background()
	require.NoError(t, doc.RenderPage(ctx, s, 0))
	require.NoError(t, doc.RenderPageRange(ctx, s, 0, 3))
	require.NoError(t, doc.RenderPageRegion(ctx, s, 0, 0, 0, 10, 10))
	require.Equal(t, before, s.Pix)
	require.NoError(t, doc.Close())
}

func TestPDFiumRenderProperties(t *testing.T) {
	b := setupPDFiumBridge(t)
	doc := b.OpenBytes(context.Background(), "two.pdf", pdftest.Build(pdftest.SimplePages(2)), "", "")
	defer doc.Close()
	require.NoError(t, doc.SetXDPI(36))

	single, ranged := whiteSurface(400, 800), whiteSurface(400, 800)
	require.NoError(t, doc.RenderPage(context.Background(), single, 1))
	require.NoError(t, doc.RenderPageRange(context.Background(), ranged, 1, 1))
	require.Equal(t, single.Pix, ranged.Pix)

	region := whiteSurface(400, 800)
	require.NoError(t, doc.RenderPageRegion(context.Background(), region, 1, 0, 0, 306, 792))
	require.Equal(t, single.Pix, region.Pix)

	// the black square at (72,600) spans 144x144 points, 72x144 pixels at 36x72 DPI
	require.InDelta(t, 72*144, countInk(single), 2*(72+144))
	require.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, single.NRGBAAt(350, 10))
}
