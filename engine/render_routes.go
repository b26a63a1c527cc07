package engine

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/drummonds/pdfbridge/binding"
	"github.com/labstack/echo/v4"
)

// maxRenderPixels bounds the surface a single request may allocate
const maxRenderPixels = 64 << 20

// PageGeometry is the geometry of one page in points
type PageGeometry struct {
	Page        int     `json:"page"`
	MediaWidth  float64 `json:"mediaWidth"`
	MediaHeight float64 `json:"mediaHeight"`
	CropWidth   float64 `json:"cropWidth"`
	CropHeight  float64 `json:"cropHeight"`
	Rotation    int     `json:"rotation"`
}

// GetPageGeometry returns the media box, crop box and rotation of a page
// @Summary Get page geometry
// @Tags Rendering
// @Produce json
// @Param id path string true "Document handle (ULID)"
// @Param page path int true "Zero based page index"
// @Success 200 {object} PageGeometry "Page geometry in points"
// @Failure 404 {object} map[string]interface{} "Unknown handle or page"
// @Failure 422 {object} map[string]interface{} "Document did not open"
// @Router /documents/{id}/pages/{page} [get]
func (serverHandler *ServerHandler) GetPageGeometry(context echo.Context) error {
	doc, err := serverHandler.liveDocument(context)
	if err != nil {
		return handleError(context, err)
	}
	page, err := strconv.Atoi(context.Param("page"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page index",
		})
	}

	geo, err := doc.PageGeometry(page)
	if err != nil {
		return handleError(context, err)
	}
	return context.JSON(http.StatusOK, PageGeometry{
		Page:        page,
		MediaWidth:  geo.MediaBox.Width(),
		MediaHeight: geo.MediaBox.Height(),
		CropWidth:   geo.CropBox.Width(),
		CropHeight:  geo.CropBox.Height(),
		Rotation:    geo.Rotation,
	})
}

// RenderPage renders one page, or a device-pixel region of it, as PNG
// @Summary Render a page
// @Description Renders with the document's current configuration. When x, y, w and h are all given only that region is returned.
// @Tags Rendering
// @Produce png
// @Param id path string true "Document handle (ULID)"
// @Param page path int true "Zero based page index"
// @Param x query int false "Region left edge in device pixels"
// @Param y query int false "Region top edge in device pixels"
// @Param w query int false "Region width in device pixels"
// @Param h query int false "Region height in device pixels"
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Failure 404 {object} map[string]interface{} "Unknown handle or page"
// @Failure 422 {object} map[string]interface{} "Document did not open"
// @Router /documents/{id}/pages/{page}/render [get]
func (serverHandler *ServerHandler) RenderPage(context echo.Context) error {
	doc, err := serverHandler.liveDocument(context)
	if err != nil {
		return handleError(context, err)
	}
	page, err := strconv.Atoi(context.Param("page"))
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid page index",
		})
	}

	region, err := regionParams(context)
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": err.Error(),
		})
	}

	ctx := context.Request().Context()
	if region != nil {
		surface, err := newSurface(region.Size())
		if err != nil {
			return context.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
		}
		if err := doc.RenderPageRegion(ctx, surface, page, region.Min.X, region.Min.Y, region.Dx(), region.Dy()); err != nil {
			return handleError(context, err)
		}
		return writePNG(context, surface)
	}

	size, err := doc.RenderSize(page, page)
	if err != nil {
		return handleError(context, err)
	}
	surface, err := newSurface(size)
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}
	if err := doc.RenderPage(ctx, surface, page); err != nil {
		return handleError(context, err)
	}
	return writePNG(context, surface)
}

// RenderRange renders an inclusive page range stacked top to bottom as PNG
// @Summary Render a page range
// @Tags Rendering
// @Produce png
// @Param id path string true "Document handle (ULID)"
// @Param first query int false "First page (default: 0)"
// @Param last query int false "Last page (default: last page of the document)"
// @Success 200 {file} binary "PNG image"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Failure 404 {object} map[string]interface{} "Unknown handle or page"
// @Failure 422 {object} map[string]interface{} "Document did not open"
// @Router /documents/{id}/render [get]
func (serverHandler *ServerHandler) RenderRange(context echo.Context) error {
	doc, err := serverHandler.liveDocument(context)
	if err != nil {
		return handleError(context, err)
	}
	pages, err := doc.GetPageCount()
	if err != nil {
		return handleError(context, err)
	}

	first, last := 0, pages-1
	if v := context.QueryParam("first"); v != "" {
		if first, err = strconv.Atoi(v); err != nil {
			return context.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid first page"})
		}
	}
	if v := context.QueryParam("last"); v != "" {
		if last, err = strconv.Atoi(v); err != nil {
			return context.JSON(http.StatusBadRequest, map[string]interface{}{"error": "Invalid last page"})
		}
	}

	size, err := doc.RenderSize(first, last)
	if err != nil {
		return handleError(context, err)
	}
	surface, err := newSurface(size)
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{"error": err.Error()})
	}
	if err := doc.RenderPageRange(context.Request().Context(), surface, first, last); err != nil {
		return handleError(context, err)
	}
	return writePNG(context, surface)
}

// liveDocument resolves the id parameter to a document that opened
func (serverHandler *ServerHandler) liveDocument(context echo.Context) (*binding.Document, error) {
	doc, err := serverHandler.lookup(context.Param("id"))
	if err != nil {
		return nil, err
	}
	if err := doc.OpenError(); err != nil {
		if errors.Is(err, binding.ErrHandleClosed) || errors.Is(err, binding.ErrNotInitialized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", errNotOpened, err)
	}
	return doc, nil
}

// regionParams reads x, y, w and h. All four or none must be given.
func regionParams(context echo.Context) (*image.Rectangle, error) {
	names := []string{"x", "y", "w", "h"}
	values := make([]int, len(names))
	given := 0
	for i, name := range names {
		raw := context.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", name, raw)
		}
		values[i] = v
		given++
	}
	switch given {
	case 0:
		return nil, nil
	case len(names):
	default:
		return nil, errors.New("region needs all of x, y, w and h")
	}
	if values[2] <= 0 || values[3] <= 0 {
		return nil, errors.New("region width and height must be positive")
	}
	r := image.Rect(values[0], values[1], values[0]+values[2], values[1]+values[3])
	return &r, nil
}

// newSurface allocates a white surface
func newSurface(size image.Point) (*image.NRGBA, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("empty render size %dx%d", size.X, size.Y)
	}
	if size.X > maxRenderPixels/size.Y {
		return nil, fmt.Errorf("render of %dx%d pixels is too large", size.X, size.Y)
	}
	return imaging.New(size.X, size.Y, color.White), nil
}

func writePNG(context echo.Context, img image.Image) error {
	response := context.Response()
	response.Header().Set(echo.HeaderContentType, "image/png")
	response.WriteHeader(http.StatusOK)
	return imaging.Encode(response, img, imaging.PNG)
}
