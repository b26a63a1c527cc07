package pdfrenderer

import (
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// defaultMediaBox is used when a page tree carries no MediaBox at all
var defaultMediaBox = Box{Left: 0, Bottom: 0, Right: 612, Top: 792}

// pageTree answers geometry queries straight from the PDF page tree.
// MuPDF only exposes the rotated page bound, so the fitz backend reads the
// boxes and /Rotate here.
type pageTree struct {
	reader *pdf.Reader
}

func newPageTree(ra io.ReaderAt, size int64, password string) (tree *pageTree, err error) {
	// ledongthuc/pdf panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			tree, err = nil, fmt.Errorf("unable to read page tree: %v", r)
		}
	}()

	var pw func() string
	if password != "" {
		tried := false
		pw = func() string {
			if tried {
				return ""
			}
			tried = true
			return password
		}
	}
	reader, err := pdf.NewReaderEncrypted(ra, size, pw)
	if err != nil {
		return nil, fmt.Errorf("unable to read page tree: %w", err)
	}
	return &pageTree{reader: reader}, nil
}

func (t *pageTree) count() (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("unable to count pages: %v", r)
		}
	}()
	return t.reader.NumPage(), nil
}

func (t *pageTree) geometry(page int) (geo PageGeometry, err error) {
	defer func() {
		if r := recover(); r != nil {
			geo, err = PageGeometry{}, fmt.Errorf("unable to read page %d: %v", page, r)
		}
	}()

	count := t.reader.NumPage()
	if err := checkPage(page, count); err != nil {
		return PageGeometry{}, err
	}
	p := t.reader.Page(page + 1) // ledongthuc/pdf numbers pages from 1
	if p.V.IsNull() {
		return PageGeometry{}, fmt.Errorf("%w: page %d not found in page tree", ErrPageRange, page)
	}

	media, ok := boxValue(inherited(p.V, "MediaBox"))
	if !ok {
		media = defaultMediaBox
	}
	crop, ok := boxValue(inherited(p.V, "CropBox"))
	if !ok {
		crop = media
	} else if crop = crop.Intersect(media); crop.Empty() {
		crop = media
	}

	return PageGeometry{
		MediaBox: media,
		CropBox:  crop,
		Rotation: NormalizeRotation(int(inherited(p.V, "Rotate").Int64())),
	}, nil
}

// inherited looks key up on the page and then on its ancestors
func inherited(v pdf.Value, key string) pdf.Value {
	for ; !v.IsNull(); v = v.Key("Parent") {
		if r := v.Key(key); !r.IsNull() {
			return r
		}
	}
	return pdf.Value{}
}

func boxValue(v pdf.Value) (Box, bool) {
	if v.Kind() != pdf.Array || v.Len() != 4 {
		return Box{}, false
	}
	x0, y0 := v.Index(0).Float64(), v.Index(1).Float64()
	x1, y1 := v.Index(2).Float64(), v.Index(3).Float64()
	b := Box{Left: min(x0, x1), Bottom: min(y0, y1), Right: max(x0, x1), Top: max(y0, y1)}
	return b, !b.Empty()
}
