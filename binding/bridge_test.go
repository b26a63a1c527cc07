package binding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
	"github.com/stretchr/testify/require"
)

// fakeEngine understands documents of the form "FAKEPDF <pages> [password]".
// Page rasters encode the pixel position in R and G and the page in B.
type fakeEngine struct {
	mu       sync.Mutex
	failPage int
	opens    int
	closed   bool
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Open(_ context.Context, src pdfrenderer.Source) (pdfrenderer.Document, error) {
	f.mu.Lock()
	f.opens++
	f.mu.Unlock()

	data, err := io.ReadAll(io.NewSectionReader(src.Reader, 0, src.Size))
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(string(data))
	if len(fields) < 2 || fields[0] != "FAKEPDF" {
		return nil, errors.New("not a PDF")
	}
	pages, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("bad page count: %w", err)
	}
	if len(fields) > 2 && src.Password != fields[2] {
		return nil, errors.New("incorrect password")
	}
	return &fakeDoc{pages: pages, failPage: f.failPage}, nil
}

func (f *fakeEngine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fakeDoc struct {
	pages    int
	failPage int
	closed   bool
}

func (d *fakeDoc) PageCount() (int, error) {
	if d.closed {
		return 0, errors.New("document closed")
	}
	return d.pages, nil
}

func (d *fakeDoc) Geometry(page int) (pdfrenderer.PageGeometry, error) {
	if page < 0 || page >= d.pages {
		return pdfrenderer.PageGeometry{}, fmt.Errorf("%w: page %d of %d", pdfrenderer.ErrPageRange, page, d.pages)
	}
	geo := pdfrenderer.PageGeometry{
		MediaBox: pdfrenderer.Box{Left: 0, Bottom: 0, Right: 200, Top: 100},
		CropBox:  pdfrenderer.Box{Left: 10, Bottom: 10, Right: 190, Top: 90},
	}
	if page == 1 {
		geo.Rotation = 90
	}
	return geo, nil
}

func (d *fakeDoc) Rasterize(_ context.Context, page int, opts pdfrenderer.RasterOptions) (*image.NRGBA, error) {
	if page == d.failPage {
		return nil, errors.New("engine exploded")
	}
	geo, err := d.Geometry(page)
	if err != nil {
		return nil, err
	}
	size := pdfrenderer.PageSize(geo, opts)
	img := image.NewNRGBA(image.Rectangle{Max: size})
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(page * 60), A: 255})
		}
	}
	return img, nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

type recordingJournal struct {
	mu      sync.Mutex
	opens   []OpenEvent
	closes  []Handle
	renders []RenderEvent
}

func (j *recordingJournal) RecordOpen(ev OpenEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.opens = append(j.opens, ev)
	return nil
}

func (j *recordingJournal) RecordClose(h Handle, _ time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.closes = append(j.closes, h)
	return nil
}

func (j *recordingJournal) RecordRender(ev RenderEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.renders = append(j.renders, ev)
	return nil
}

func setupBridge(t *testing.T, opts Options) (*Bridge, *fakeEngine) {
	t.Helper()
	engine := &fakeEngine{failPage: -1}
	opts.EngineFactory = func(pdfrenderer.Config) (pdfrenderer.Engine, error) { return engine, nil }
	b := NewBridge(opts)
	require.NoError(t, b.Init(context.Background()))
	t.Cleanup(func() { _ = b.Close() })
	return b, engine
}

func openTempFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// newSurface returns a surface filled with a color no fake raster produces at its origin
func newSurface(w, h int) *image.NRGBA {
	s := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(s.Pix); i += 4 {
		copy(s.Pix[i:i+4], []byte{1, 2, 3, 255})
	}
	return s
}

func TestInitIsIdempotent(t *testing.T) {
	calls := 0
	b := NewBridge(Options{EngineFactory: func(pdfrenderer.Config) (pdfrenderer.Engine, error) {
		calls++
		return &fakeEngine{failPage: -1}, nil
	}})
	defer b.Close()

	require.NoError(t, b.Init(context.Background()))
	require.NoError(t, b.Init(context.Background()))
	require.Equal(t, 1, calls)
	require.Equal(t, "fake", b.EngineName())
}

func TestInitFailureIsSticky(t *testing.T) {
	boom := errors.New("no wasm today")
	b := NewBridge(Options{EngineFactory: func(pdfrenderer.Config) (pdfrenderer.Engine, error) {
		return nil, boom
	}})
	defer b.Close()

	require.ErrorIs(t, b.Init(context.Background()), boom)
	require.ErrorIs(t, b.Init(context.Background()), boom)

	doc := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 1"), "", "")
	require.False(t, doc.IsValid())
	require.ErrorIs(t, doc.OpenError(), ErrNotInitialized)
}

func TestOpenBeforeInit(t *testing.T) {
	b := NewBridge(Options{EngineFactory: func(pdfrenderer.Config) (pdfrenderer.Engine, error) {
		return &fakeEngine{failPage: -1}, nil
	}})
	defer b.Close()

	doc := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 1"), "", "")
	require.False(t, doc.IsValid())

	_, err := doc.GetPageCount()
	require.ErrorIs(t, err, ErrNotInitialized)

	s := newSurface(10, 10)
	before := bytes.Clone(s.Pix)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Equal(t, before, s.Pix)
}

func TestOpenByDescriptor(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	f := openTempFile(t, "FAKEPDF 3")

	doc := b.Open(context.Background(), f.Fd(), "", "")
	require.True(t, doc.IsValid())
	require.NoError(t, doc.OpenError())

	count, err := doc.GetPageCount()
	require.NoError(t, err)
	require.Equal(t, 3, count)

	require.NoError(t, doc.Close())

	// the caller still owns the original descriptor
	buf := make([]byte, 7)
	_, err = f.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, "FAKEPDF", string(buf))
}

func TestOpenBadDescriptor(t *testing.T) {
	b, _ := setupBridge(t, Options{})

	doc := b.Open(context.Background(), 1<<20, "", "")
	require.False(t, doc.IsValid())
	require.ErrorIs(t, doc.OpenError(), ErrInvalidHandle)
	require.NoError(t, doc.Close())
}

func TestTwoHandlesOnOneDescriptor(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	f := openTempFile(t, "FAKEPDF 3")

	first := b.Open(context.Background(), f.Fd(), "", "")
	second := b.Open(context.Background(), f.Fd(), "", "")
	require.NotEqual(t, first.Handle(), second.Handle())

	var wg sync.WaitGroup
	surfaces := []*image.NRGBA{newSurface(180, 80), newSurface(180, 80)}
	errs := make([]error, 2)
	for i, doc := range []*Document{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := 0; page < 3 && errs[i] == nil; page++ {
				errs[i] = doc.RenderPage(context.Background(), surfaces[i], page)
			}
		}()
	}
	wg.Wait()
	require.NoError(t, errors.Join(errs...))
	require.Equal(t, surfaces[0].Pix, surfaces[1].Pix)

	require.NoError(t, first.Close())
	require.True(t, second.IsValid())
	count, err := second.GetPageCount()
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestNotAPDF(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	f := openTempFile(t, "GIF89a not a pdf at all")

	doc := b.Open(context.Background(), f.Fd(), "", "")
	require.False(t, doc.IsValid())
	require.ErrorIs(t, doc.OpenError(), ErrInvalidHandle)

	s := newSurface(50, 50)
	before := bytes.Clone(s.Pix)
	ctx := context.Background()
	require.NoError(t, doc.RenderPage(ctx, s, 0))
	require.NoError(t, doc.RenderPageRange(ctx, s, 0, 2))
	require.NoError(t, doc.RenderPageRegion(ctx, s, 0, 0, 0, 10, 10))
	require.Equal(t, before, s.Pix)

	_, err := doc.GetPageMediaWidth(0)
	require.ErrorIs(t, err, ErrInvalidHandle)

	require.NoError(t, doc.Close())
}

func TestRenderOnInvalidHandlesLeavesSurfaceUnchanged(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	closed := b.OpenBytes(context.Background(), "closed.pdf", []byte("FAKEPDF 2"), "", "")
	require.NoError(t, closed.Close())

	for name, doc := range map[string]*Document{
		"nil":     nil,
		"zero":    {},
		"null":    {bridge: b},
		"unknown": {bridge: b, handle: Handle{1, 2, 3}},
		"closed":  closed,
	} {
		t.Run(name, func(t *testing.T) {
			s := newSurface(200, 200)
			before := bytes.Clone(s.Pix)
			ctx := context.Background()
			require.NoError(t, doc.RenderPage(ctx, s, 0))
			require.NoError(t, doc.RenderPageRange(ctx, s, 0, 1))
			require.NoError(t, doc.RenderPageRegion(ctx, s, 0, 5, 5, 20, 20))
			require.Equal(t, before, s.Pix)
		})
	}
}

func TestZeroValueDocument(t *testing.T) {
	var doc Document
	s := newSurface(50, 50)
	before := bytes.Clone(s.Pix)

	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.NoError(t, doc.RenderPageRange(context.Background(), s, 0, 2))
	require.NoError(t, doc.RenderPageRegion(context.Background(), s, 0, 0, 0, 10, 10))
	require.Equal(t, before, s.Pix)

	require.False(t, doc.IsValid())
	require.ErrorIs(t, doc.OpenError(), ErrInvalidHandle)
	_, err := doc.GetPageCount()
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = doc.RenderSize(0, 0)
	require.ErrorIs(t, err, ErrInvalidHandle)
	require.ErrorIs(t, doc.Close(), ErrInvalidHandle)
	require.Equal(t, NullHandle, doc.Handle())
}

func TestRangeOfOneEqualsPage(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 3"), "", "")
	require.NoError(t, doc.SetXDPI(96))
	require.NoError(t, doc.SetRotate(90))

	for page := 0; page < 3; page++ {
		single, ranged := newSurface(300, 300), newSurface(300, 300)
		require.NoError(t, doc.RenderPage(context.Background(), single, page))
		require.NoError(t, doc.RenderPageRange(context.Background(), ranged, page, page))
		require.Equal(t, single.Pix, ranged.Pix, "page %d", page)
	}
}

func TestFullRegionEqualsPage(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 2"), "", "")
	require.NoError(t, doc.SetUseMediaBox(true))

	geo, err := doc.PageGeometry(1)
	require.NoError(t, err)
	size := pdfrenderer.PageSize(geo, doc.Config().rasterOptions())
	require.Equal(t, image.Pt(100, 200), size)

	single, region := newSurface(250, 250), newSurface(250, 250)
	require.NoError(t, doc.RenderPage(context.Background(), single, 1))
	require.NoError(t, doc.RenderPageRegion(context.Background(), region, 1, 0, 0, size.X, size.Y))
	require.Equal(t, single.Pix, region.Pix)
}

func TestRenderPageRegionSlice(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 1"), "", "")

	s := newSurface(40, 40)
	require.NoError(t, doc.RenderPageRegion(context.Background(), s, 0, 5, 6, 10, 10))
	require.Equal(t, color.NRGBA{R: 5, G: 6, B: 0, A: 255}, s.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{R: 14, G: 15, B: 0, A: 255}, s.NRGBAAt(9, 9))
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, s.NRGBAAt(10, 10))

	// a region entirely outside the page draws nothing
	s = newSurface(40, 40)
	before := bytes.Clone(s.Pix)
	require.NoError(t, doc.RenderPageRegion(context.Background(), s, 0, 1000, 1000, 10, 10))
	require.Equal(t, before, s.Pix)
}

func TestRenderPageRangeStacksPages(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 3"), "", "")
	require.NoError(t, doc.SetUseMediaBox(true))

	// page 1 is rotated, so the stack is 100 + 200 + 100 pixels tall
	s := newSurface(200, 400)
	require.NoError(t, doc.RenderPageRange(context.Background(), s, 0, 2))
	require.Equal(t, uint8(0), s.NRGBAAt(0, 0).B)
	require.Equal(t, uint8(60), s.NRGBAAt(0, 100).B)
	require.Equal(t, uint8(120), s.NRGBAAt(0, 300).B)
	// right of the rotated page the surface is untouched
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, s.NRGBAAt(150, 150))

	size, err := doc.RenderSize(0, 2)
	require.NoError(t, err)
	require.Equal(t, image.Pt(200, 400), size)

	_, err = doc.RenderSize(2, 3)
	require.ErrorIs(t, err, ErrPageIndexOutOfRange)
}

func TestRenderRespectsSurfaceOrigin(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 1"), "", "")

	parent := newSurface(300, 300)
	s := parent.SubImage(image.Rect(50, 50, 300, 300)).(*image.NRGBA)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, parent.NRGBAAt(50, 50))
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, parent.NRGBAAt(49, 49))
}

func TestRenderFailureDrawsNothing(t *testing.T) {
	b, engine := setupBridge(t, Options{})
	engine.failPage = 2
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 3"), "", "")

	s := newSurface(200, 400)
	before := bytes.Clone(s.Pix)
	err := doc.RenderPageRange(context.Background(), s, 0, 2)
	require.ErrorContains(t, err, "engine exploded")
	require.Equal(t, before, s.Pix)

	err = doc.RenderPage(context.Background(), s, 7)
	require.ErrorIs(t, err, ErrPageIndexOutOfRange)
}

func TestRenderCanceled(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 1"), "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, doc.RenderPage(ctx, newSurface(10, 10), 0), context.Canceled)
}

func TestGeometry(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 2"), "", "")

	w, err := doc.GetPageMediaWidth(0)
	require.NoError(t, err)
	require.Equal(t, 200.0, w)
	h, err := doc.GetPageMediaHeight(0)
	require.NoError(t, err)
	require.Equal(t, 100.0, h)
	w, err = doc.GetPageCropWidth(0)
	require.NoError(t, err)
	require.Equal(t, 180.0, w)
	h, err = doc.GetPageCropHeight(0)
	require.NoError(t, err)
	require.Equal(t, 80.0, h)

	rot, err := doc.GetPageRotation(0)
	require.NoError(t, err)
	require.Equal(t, 0, rot)
	rot, err = doc.GetPageRotation(1)
	require.NoError(t, err)
	require.Equal(t, 90, rot)

	for _, page := range []int{-1, 2, 100} {
		_, err = doc.GetPageCropWidth(page)
		require.ErrorIs(t, err, ErrPageIndexOutOfRange)
		require.ErrorIs(t, err, pdfrenderer.ErrPageRange)
	}
}

func TestConfigChangesApplyImmediately(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 1"), "", "")
	require.Equal(t, DefaultRenderConfig(), doc.Config())

	s := newSurface(400, 200)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 255}, s.NRGBAAt(300, 10))

	require.NoError(t, doc.SetXDPI(144))
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Equal(t, color.NRGBA{R: 44, G: 10, B: 0, A: 255}, s.NRGBAAt(300, 10))

	require.ErrorIs(t, doc.SetRotate(45), ErrInvalidConfig)
	require.ErrorIs(t, doc.SetYDPI(0), ErrInvalidConfig)
	require.ErrorIs(t, doc.SetConfig(RenderConfig{HDPI: -1, VDPI: 72}), ErrInvalidConfig)
	require.Equal(t, RenderConfig{HDPI: 144, VDPI: 72}, doc.Config())

	require.NoError(t, doc.SetCrop(true))
	require.True(t, doc.Config().Crop)
}

func TestFitWidth(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 2"), "", "")

	dpi, err := doc.FitWidthDPI(0, 360)
	require.NoError(t, err)
	require.InDelta(t, 144, dpi, 1e-9)

	// page 1 is rotated a quarter turn, its crop box height becomes the width
	dpi, err = doc.FitWidthDPI(1, 160)
	require.NoError(t, err)
	require.InDelta(t, 144, dpi, 1e-9)

	require.NoError(t, doc.SetUseMediaBox(true))
	dpi, err = doc.FitWidthDPI(0, 100)
	require.NoError(t, err)
	require.InDelta(t, 36, dpi, 1e-9)
	require.NoError(t, doc.SetUseMediaBox(false))

	require.NoError(t, doc.SetYDPI(36))
	require.NoError(t, doc.FitWidth(0, 360))
	require.InDelta(t, 144, doc.Config().HDPI, 1e-9)
	require.InDelta(t, 72, doc.Config().VDPI, 1e-9)
	size, err := doc.RenderSize(0, 0)
	require.NoError(t, err)
	require.Equal(t, image.Pt(360, 80), size)

	_, err = doc.FitWidthDPI(0, 0)
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.ErrorIs(t, doc.FitWidth(5, 100), ErrPageIndexOutOfRange)
	require.InDelta(t, 144, doc.Config().HDPI, 1e-9)
}

func TestCloseTwice(t *testing.T) {
	journal := &recordingJournal{}
	b, _ := setupBridge(t, Options{Journal: journal})
	doc := b.OpenBytes(context.Background(), "doc.pdf", []byte("FAKEPDF 2"), "", "")

	require.NoError(t, doc.Close())
	require.ErrorIs(t, doc.Close(), ErrHandleClosed)
	require.False(t, doc.IsValid())

	_, err := doc.GetPageCount()
	require.ErrorIs(t, err, ErrHandleClosed)
	_, err = b.Lookup(doc.Handle())
	require.ErrorIs(t, err, ErrHandleClosed)

	require.Len(t, journal.closes, 1)
}

func TestPasswordPolicy(t *testing.T) {
	content := []byte("FAKEPDF 2 secret")

	b, _ := setupBridge(t, Options{PasswordPolicy: PasswordIgnore})
	doc := b.OpenBytes(context.Background(), "locked.pdf", content, "secret", "secret")
	require.False(t, doc.IsValid())
	require.ErrorContains(t, doc.OpenError(), "incorrect password")

	b, engine := setupBridge(t, Options{PasswordPolicy: PasswordForward})
	doc = b.OpenBytes(context.Background(), "locked.pdf", content, "secret", "wrong")
	require.True(t, doc.IsValid())
	require.Equal(t, 2, engine.opens, "user password first, then owner password")

	doc = b.OpenBytes(context.Background(), "locked.pdf", content, "", "")
	require.False(t, doc.IsValid())
}

func TestCloseIdle(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	first := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 1"), "", "")
	second := b.OpenBytes(context.Background(), "b.pdf", []byte("FAKEPDF 1"), "", "")
	require.Len(t, b.Handles(), 2)

	require.Equal(t, 0, b.CloseIdle(time.Hour))
	require.Equal(t, 2, b.CloseIdle(0))
	require.Empty(t, b.Handles())
	require.ErrorIs(t, first.Close(), ErrHandleClosed)
	require.ErrorIs(t, second.Close(), ErrHandleClosed)
}

func TestLookup(t *testing.T) {
	b, _ := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 1"), "", "")

	h, err := ParseHandle(doc.Handle().String())
	require.NoError(t, err)
	found, err := b.Lookup(h)
	require.NoError(t, err)
	require.Same(t, doc, found)

	_, err = b.Lookup(NullHandle)
	require.ErrorIs(t, err, ErrInvalidHandle)
	_, err = ParseHandle("not-a-handle")
	require.ErrorIs(t, err, ErrInvalidHandle)
}

func TestJournalRecordsLifecycle(t *testing.T) {
	journal := &recordingJournal{}
	b, _ := setupBridge(t, Options{Journal: journal})
	doc := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 2"), "", "")
	bad := b.OpenBytes(context.Background(), "b.pdf", []byte("nope"), "", "")

	s := newSurface(200, 200)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.NoError(t, doc.RenderPageRegion(context.Background(), s, 0, 1, 2, 3, 4))
	require.NoError(t, bad.RenderPage(context.Background(), s, 0))

	require.Len(t, journal.opens, 2)
	require.True(t, journal.opens[0].Valid)
	require.Equal(t, 2, journal.opens[0].Pages)
	require.False(t, journal.opens[1].Valid)
	require.NotEmpty(t, journal.opens[1].OpenErr)

	require.Len(t, journal.renders, 3)
	require.Equal(t, RenderCompleted, journal.renders[0].Status)
	require.Equal(t, OpRegion, journal.renders[1].Op)
	require.Equal(t, "1,2,3,4", journal.renders[1].Region)
	require.Equal(t, RenderSkipped, journal.renders[2].Status)
}

func TestBridgeClose(t *testing.T) {
	b, engine := setupBridge(t, Options{})
	doc := b.OpenBytes(context.Background(), "a.pdf", []byte("FAKEPDF 1"), "", "")

	require.NoError(t, b.Close())
	require.True(t, engine.closed)
	require.Empty(t, b.Handles())
	require.False(t, doc.IsValid())
	require.Equal(t, "", b.EngineName())

	s := newSurface(10, 10)
	before := bytes.Clone(s.Pix)
	require.NoError(t, doc.RenderPage(context.Background(), s, 0))
	require.Equal(t, before, s.Pix)
}
