// Command render opens a PDF by file descriptor, prints its page geometry and
// renders a page, a page range or a page region to an image file.
//
//	render -o page.png -page 0 report.pdf
//	render -o pages.jpg -first 0 -last 2 -hdpi 150 -vdpi 150 report.pdf
//	render -o detail.png -page 1 -region 100,100,300,200 report.pdf
//	render -o fit.png -page 0 -width 1080 report.pdf
//	render -info report.pdf
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/drummonds/pdfbridge/binding"
	config "github.com/drummonds/pdfbridge/config"
	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	config.Logger = Logger
	binding.Logger = Logger
	pdfrenderer.Logger = Logger
}

type options struct {
	output      string
	info        bool
	page        int
	first, last int
	region      string
	hdpi, vdpi  float64
	width       int
	rotate      int
	useMediaBox bool
	crop        bool
	owner, user string
}

func main() {
	renderConfig, logger := config.SetupCLI()
	injectGlobals(logger)

	var opts options
	flag.StringVar(&opts.output, "o", "", "Output image file, format from the extension (png, jpg, gif, tif, bmp)")
	flag.BoolVar(&opts.info, "info", false, "Only print the page geometry")
	flag.IntVar(&opts.page, "page", 0, "Zero based page to render")
	flag.IntVar(&opts.first, "first", -1, "First page of a range")
	flag.IntVar(&opts.last, "last", -1, "Last page of a range (inclusive)")
	flag.StringVar(&opts.region, "region", "", "Device pixel region x,y,w,h of -page")
	flag.Float64Var(&opts.hdpi, "hdpi", renderConfig.DefaultHDPI, "Horizontal resolution")
	flag.Float64Var(&opts.vdpi, "vdpi", renderConfig.DefaultVDPI, "Vertical resolution")
	flag.IntVar(&opts.width, "width", 0, "Zoom so -page is this many pixels wide, keeping the -hdpi:-vdpi aspect")
	flag.IntVar(&opts.rotate, "rotate", 0, "Extra clockwise rotation (0, 90, 180, 270)")
	flag.BoolVar(&opts.useMediaBox, "mediabox", false, "Render the media box instead of the crop box")
	flag.BoolVar(&opts.crop, "crop", false, "With -mediabox, blank everything outside the crop box")
	flag.StringVar(&opts.owner, "owner", "", "Owner password")
	flag.StringVar(&opts.user, "user", "", "User password")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] file.pdf\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || (!opts.info && opts.output == "") {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, renderConfig, flag.Arg(0), opts); err != nil {
		fmt.Fprintln(os.Stderr, "render:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, renderConfig config.RenderConfig, path string, opts options) error {
	bridge := binding.NewBridge(binding.Options{
		Engine: pdfrenderer.Config{
			Name:         renderConfig.PDFEngine,
			InstanceWait: renderConfig.InstanceWait,
		},
		PasswordPolicy: binding.PasswordPolicy(renderConfig.PasswordPolicy),
	})
	defer bridge.Close()
	if err := bridge.Init(ctx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := bridge.Open(ctx, f.Fd(), opts.owner, opts.user)
	defer doc.Close()
	if err := doc.OpenError(); err != nil {
		return fmt.Errorf("unable to open %s: %w", path, err)
	}

	if err := doc.SetConfig(binding.RenderConfig{
		HDPI:        opts.hdpi,
		VDPI:        opts.vdpi,
		Rotate:      opts.rotate,
		UseMediaBox: opts.useMediaBox,
		Crop:        opts.crop,
	}); err != nil {
		return err
	}
	if opts.width > 0 {
		if err := doc.FitWidth(opts.page, opts.width); err != nil {
			return err
		}
		cfg := doc.Config()
		fmt.Printf("Fit width %d px: %.2f x %.2f DPI\n", opts.width, cfg.HDPI, cfg.VDPI)
	}

	if err := printGeometry(doc); err != nil {
		return err
	}
	if opts.info {
		return nil
	}

	img, err := render(ctx, doc, opts)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, opts.output); err != nil {
		return fmt.Errorf("unable to write %s: %w", opts.output, err)
	}
	fmt.Printf("Wrote %s (%dx%d)\n", opts.output, img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}

func printGeometry(doc *binding.Document) error {
	pages, err := doc.GetPageCount()
	if err != nil {
		return err
	}
	fmt.Printf("Pages: %d\n", pages)
	for page := 0; page < pages; page++ {
		geo, err := doc.PageGeometry(page)
		if err != nil {
			return err
		}
		fmt.Printf("  %3d  media %7.2f x %-7.2f  crop %7.2f x %-7.2f  rotation %d\n", page,
			geo.MediaBox.Width(), geo.MediaBox.Height(), geo.CropBox.Width(), geo.CropBox.Height(), geo.Rotation)
	}
	return nil
}

// render picks the entry point from the flags and renders onto a white surface
func render(ctx context.Context, doc *binding.Document, opts options) (*image.NRGBA, error) {
	if opts.region != "" {
		x, y, w, h, err := parseRegion(opts.region)
		if err != nil {
			return nil, err
		}
		surface := imaging.New(w, h, color.White)
		return surface, doc.RenderPageRegion(ctx, surface, opts.page, x, y, w, h)
	}

	first, last := opts.page, opts.page
	if opts.first >= 0 || opts.last >= 0 {
		pages, err := doc.GetPageCount()
		if err != nil {
			return nil, err
		}
		first, last = max(opts.first, 0), opts.last
		if last < 0 {
			last = pages - 1
		}
	}

	size, err := doc.RenderSize(first, last)
	if err != nil {
		return nil, err
	}
	surface := imaging.New(size.X, size.Y, color.White)
	if first == last {
		return surface, doc.RenderPage(ctx, surface, first)
	}
	return surface, doc.RenderPageRange(ctx, surface, first, last)
}

func parseRegion(s string) (x, y, w, h int, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, fmt.Errorf("region %q must be x,y,w,h", s)
	}
	var v [4]int
	for i, p := range parts {
		if v[i], err = strconv.Atoi(strings.TrimSpace(p)); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("region %q: %w", s, err)
		}
	}
	if v[2] <= 0 || v[3] <= 0 {
		return 0, 0, 0, 0, fmt.Errorf("region %q needs a positive width and height", s)
	}
	return v[0], v[1], v[2], v[3], nil
}
