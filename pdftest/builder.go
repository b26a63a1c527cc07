// Package pdftest builds small, well-formed PDF files for tests.
//
// The generated files use a classic cross-reference table with exact byte
// offsets so that every engine (PDFium, MuPDF, ledongthuc/pdf) accepts them.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

// Box is a PDF rectangle in default user space units (points).
type Box struct {
	LLX, LLY, URX, URY float64
}

// Letter is the US Letter media box.
var Letter = Box{0, 0, 612, 792}

// Page describes one generated page.
type Page struct {
	MediaBox Box    // zero value means no /MediaBox entry on the page
	CropBox  *Box   // nil means no /CropBox entry
	Rotate   int    // written only when non-zero
	Content  string // raw content stream operators
}

// FilledRect returns content stream operators painting an RGB rectangle.
func FilledRect(x, y, w, h, r, g, b float64) string {
	return fmt.Sprintf("%.3f %.3f %.3f rg\n%.2f %.2f %.2f %.2f re\nf\n", r, g, b, x, y, w, h)
}

// SimplePages returns n letter pages each painting a black square near the
// top left corner.
func SimplePages(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{
			MediaBox: Letter,
			Content:  FilledRect(72, 600, 144, 144, 0, 0, 0),
		}
	}
	return pages
}

// Tree is a page tree whose /Pages node carries attributes the pages inherit.
type Tree struct {
	MediaBox *Box
	CropBox  *Box
	Rotate   int
	Pages    []Page
}

// Build serializes pages into a complete PDF document.
func Build(pages []Page) []byte {
	return Tree{Pages: pages}.Build()
}

// Build serializes the tree into a complete PDF document.
func (t Tree) Build() []byte {
	pages := t.Pages
	var buf bytes.Buffer
	var offsets []int

	begin := func() int {
		offsets = append(offsets, buf.Len())
		return len(offsets)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	// 1: catalog, 2: page tree, then (page, content) pairs.
	begin()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := new(bytes.Buffer)
	for i := range pages {
		fmt.Fprintf(kids, "%d 0 R ", 3+2*i)
	}
	begin()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d", kids.String(), len(pages))
	writeAttrs(&buf, t.MediaBox, t.CropBox, t.Rotate)
	buf.WriteString(" >>\nendobj\n")

	for _, p := range pages {
		pageNum := begin()
		contentNum := pageNum + 1
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R", pageNum)
		var media *Box
		if p.MediaBox != (Box{}) {
			media = &p.MediaBox
		}
		writeAttrs(&buf, media, p.CropBox, p.Rotate)
		fmt.Fprintf(&buf, " /Resources << >> /Contents %d 0 R >>\nendobj\n", contentNum)

		begin()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", contentNum, len(p.Content)+1, p.Content)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xrefOffset)
	return buf.Bytes()
}

// WriteFile builds pages and writes them to dir/name, returning the path.
func WriteFile(dir, name string, pages []Page) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages), 0644); err != nil {
		return "", fmt.Errorf("unable to write test PDF: %w", err)
	}
	return path, nil
}

func writeAttrs(buf *bytes.Buffer, media, crop *Box, rotate int) {
	if media != nil {
		fmt.Fprintf(buf, " /MediaBox %s", media.array())
	}
	if crop != nil {
		fmt.Fprintf(buf, " /CropBox %s", crop.array())
	}
	if rotate != 0 {
		fmt.Fprintf(buf, " /Rotate %d", rotate)
	}
}

func (b Box) array() string {
	return fmt.Sprintf("[%g %g %g %g]", b.LLX, b.LLY, b.URX, b.URY)
}
