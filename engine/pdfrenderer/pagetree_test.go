package pdfrenderer

import (
	"bytes"
	"testing"

	"github.com/drummonds/pdfbridge/pdftest"
	"github.com/stretchr/testify/require"
)

func openTree(t *testing.T, pages []pdftest.Page) *pageTree {
	t.Helper()
	data := pdftest.Build(pages)
	tree, err := newPageTree(bytes.NewReader(data), int64(len(data)), "")
	require.NoError(t, err)
	return tree
}

func TestPageTreeGeometry(t *testing.T) {
	crop := pdftest.Box{LLX: 36, LLY: 36, URX: 576, URY: 756}
	tree := openTree(t, []pdftest.Page{
		{MediaBox: pdftest.Letter},
		{MediaBox: pdftest.Letter, CropBox: &crop, Rotate: 90},
		{MediaBox: pdftest.Box{LLX: 0, LLY: 0, URX: 842, URY: 595}, Rotate: -90},
	})

	count, err := tree.count()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	geo, err := tree.geometry(0)
	require.NoError(t, err)
	require.Equal(t, Box{0, 0, 612, 792}, geo.MediaBox)
	require.Equal(t, geo.MediaBox, geo.CropBox)
	require.Equal(t, 0, geo.Rotation)

	geo, err = tree.geometry(1)
	require.NoError(t, err)
	require.Equal(t, Box{36, 36, 576, 756}, geo.CropBox)
	require.Equal(t, 90, geo.Rotation)

	geo, err = tree.geometry(2)
	require.NoError(t, err)
	require.InDelta(t, 842, geo.MediaBox.Width(), 0.001)
	require.Equal(t, 270, geo.Rotation)
}

func TestPageTreeInheritedGeometry(t *testing.T) {
	half := pdftest.Box{LLX: 0, LLY: 396, URX: 306, URY: 792}
	a4 := pdftest.Box{LLX: 0, LLY: 0, URX: 595, URY: 842}
	data := pdftest.Tree{
		MediaBox: &pdftest.Letter,
		CropBox:  &half,
		Rotate:   270,
		Pages: []pdftest.Page{
			{},
			{MediaBox: a4, Rotate: 90},
		},
	}.Build()
	tree, err := newPageTree(bytes.NewReader(data), int64(len(data)), "")
	require.NoError(t, err)

	geo, err := tree.geometry(0)
	require.NoError(t, err)
	require.Equal(t, Box{0, 0, 612, 792}, geo.MediaBox)
	require.Equal(t, Box{0, 396, 306, 792}, geo.CropBox)
	require.Equal(t, 270, geo.Rotation)

	// page entries win over the inherited ones
	geo, err = tree.geometry(1)
	require.NoError(t, err)
	require.Equal(t, Box{0, 0, 595, 842}, geo.MediaBox)
	require.Equal(t, Box{0, 396, 306, 792}, geo.CropBox)
	require.Equal(t, 90, geo.Rotation)
}

func TestPageTreeOutOfRange(t *testing.T) {
	tree := openTree(t, pdftest.SimplePages(2))

	_, err := tree.geometry(2)
	require.ErrorIs(t, err, ErrPageRange)

	_, err = tree.geometry(-1)
	require.ErrorIs(t, err, ErrPageRange)
}

func TestPageTreeCropOutsideMedia(t *testing.T) {
	crop := pdftest.Box{LLX: 700, LLY: 900, URX: 800, URY: 1000}
	tree := openTree(t, []pdftest.Page{{MediaBox: pdftest.Letter, CropBox: &crop}})

	geo, err := tree.geometry(0)
	require.NoError(t, err)
	require.Equal(t, geo.MediaBox, geo.CropBox)
}

func TestPageTreeNotPDF(t *testing.T) {
	data := []byte("this is plain text, not a PDF document\n")
	_, err := newPageTree(bytes.NewReader(data), int64(len(data)), "")
	require.Error(t, err)
}
