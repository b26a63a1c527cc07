package pdfrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// pointsPerInch is the PDF user space unit
const pointsPerInch = 72.0

// paper is the background used for areas outside the crop box
var paper = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// ValidateOptions checks the parts of a render configuration that every backend relies on
func ValidateOptions(opts RasterOptions) error {
	if !(opts.HDPI > 0) || !(opts.VDPI > 0) || math.IsInf(opts.HDPI, 0) || math.IsInf(opts.VDPI, 0) {
		return fmt.Errorf("resolution must be positive, got %gx%g DPI", opts.HDPI, opts.VDPI)
	}
	if !ValidRotation(opts.Rotate) {
		return fmt.Errorf("rotation must be one of 0, 90, 180, 270, got %d", opts.Rotate)
	}
	return nil
}

// ValidRotation reports whether deg is a quarter turn
func ValidRotation(deg int) bool {
	switch deg {
	case 0, 90, 180, 270:
		return true
	}
	return false
}

// NormalizeRotation folds any multiple of 90 into 0..270
func NormalizeRotation(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg - deg%90
}

// baseDPI is the isotropic resolution a backend rasterizes at before the
// final resize to the horizontal and vertical resolution
func baseDPI(opts RasterOptions) float64 {
	return max(opts.HDPI, opts.VDPI)
}

// visibleBox is the box that defines the output area
func visibleBox(geo PageGeometry, opts RasterOptions) Box {
	if opts.UseMediaBox {
		return geo.MediaBox
	}
	return geo.CropBox
}

// finishRaster applies the shared tail of the render configuration to a raster
// of the visible box that already has the page rotation applied: crop box
// clipping, the extra rotation and the anisotropic resolution.
func finishRaster(base image.Image, geo PageGeometry, opts RasterOptions) *image.NRGBA {
	img := imaging.Clone(base)
	visible := visibleBox(geo, opts)

	if opts.UseMediaBox && opts.Crop && geo.CropBox != geo.MediaBox {
		clipOutside(img, cropRect(img.Bounds().Size(), visible, geo.CropBox, geo.Rotation))
	}

	img = rotateClockwise(img, opts.Rotate)

	target := PageSize(geo, opts)
	if img.Bounds().Size() != target {
		img = imaging.Resize(img, target.X, target.Y, imaging.Lanczos)
	}
	return img
}

// PageSize returns the pixel size Rasterize produces for a page
func PageSize(geo PageGeometry, opts RasterOptions) image.Point {
	wPts, hPts := OutputPoints(geo, opts)
	return image.Pt(pixels(wPts, opts.HDPI), pixels(hPts, opts.VDPI))
}

// OutputPoints is the size in points of the visible box once both rotations are applied
func OutputPoints(geo PageGeometry, opts RasterOptions) (width, height float64) {
	visible := visibleBox(geo, opts)
	width, height = visible.Width(), visible.Height()
	if total := NormalizeRotation(geo.Rotation + opts.Rotate); total == 90 || total == 270 {
		width, height = height, width
	}
	return width, height
}

// pixels saturates at math.MaxInt32 so absurd resolutions cannot wrap
func pixels(points, dpi float64) int {
	v := math.Round(points * dpi / pointsPerInch)
	if !(v < math.MaxInt32) {
		return math.MaxInt32
	}
	return max(1, int(v))
}

// rotateClockwise turns img by deg degrees clockwise. imaging rotates counter-clockwise.
func rotateClockwise(img *image.NRGBA, deg int) *image.NRGBA {
	switch NormalizeRotation(deg) {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	}
	return img
}

// cropRect maps the crop box into the pixel space of a raster of the visible
// box rendered with the page rotation applied
func cropRect(size image.Point, visible, crop Box, rotation int) image.Rectangle {
	clip := crop.Intersect(visible)
	if clip.Empty() || visible.Empty() {
		return image.Rectangle{}
	}
	// unrotated raster dimensions
	w, h := float64(size.X), float64(size.Y)
	if rotation == 90 || rotation == 270 {
		w, h = h, w
	}
	sx, sy := w/visible.Width(), h/visible.Height()
	x0 := (clip.Left - visible.Left) * sx
	x1 := (clip.Right - visible.Left) * sx
	y0 := (visible.Top - clip.Top) * sy
	y1 := (visible.Top - clip.Bottom) * sy

	var r [4]float64
	switch rotation {
	case 90:
		r = [4]float64{h - y1, x0, h - y0, x1}
	case 180:
		r = [4]float64{w - x1, h - y1, w - x0, h - y0}
	case 270:
		r = [4]float64{y0, w - x1, y1, w - x0}
	default:
		r = [4]float64{x0, y0, x1, y1}
	}
	return image.Rect(
		int(math.Round(r[0])), int(math.Round(r[1])),
		int(math.Round(r[2])), int(math.Round(r[3])),
	)
}

// clipOutside paints everything outside keep with the paper color
func clipOutside(img *image.NRGBA, keep image.Rectangle) {
	b := img.Bounds()
	keep = keep.Add(b.Min).Intersect(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !image.Pt(x, y).In(keep) {
				img.SetNRGBA(x, y, paper)
			}
		}
	}
}

// padToBox places a raster of inner onto a paper-filled raster of outer.
// Both rasters share the scale of the inner one and the page rotation.
func padToBox(inner image.Image, outer, innerBox Box, rotation int) *image.NRGBA {
	size := inner.Bounds().Size()
	w, h := float64(size.X), float64(size.Y)
	if rotation == 90 || rotation == 270 {
		w, h = h, w
	}
	if innerBox.Empty() {
		return imaging.Clone(inner)
	}
	sx, sy := w/innerBox.Width(), h/innerBox.Height()
	outerSize := image.Pt(
		max(1, int(math.Round(outer.Width()*sx))),
		max(1, int(math.Round(outer.Height()*sy))),
	)
	if rotation == 90 || rotation == 270 {
		outerSize.X, outerSize.Y = outerSize.Y, outerSize.X
	}
	canvas := imaging.New(outerSize.X, outerSize.Y, paper)
	at := cropRect(outerSize, outer, innerBox, rotation).Min
	return imaging.Paste(canvas, inner, at)
}

// Slice extracts the device-pixel rectangle r from img. The result is empty
// when r does not intersect the raster.
func Slice(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	r = r.Add(img.Bounds().Min).Intersect(img.Bounds())
	if r.Empty() {
		return &image.NRGBA{}
	}
	return imaging.Crop(img, r)
}
