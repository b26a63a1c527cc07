package engine

import (
	"errors"
	"io"
	"net/http"
	"sort"

	"github.com/drummonds/pdfbridge/binding"
	"github.com/drummonds/pdfbridge/config"
	"github.com/drummonds/pdfbridge/database"
	"github.com/labstack/echo/v4"
)

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	Bridge       *binding.Bridge
	DB           database.Repository
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
}

// DocumentInfo is the state of one document handle
type DocumentInfo struct {
	Handle binding.Handle       `json:"handle"`
	Valid  bool                 `json:"valid"`
	Pages  int                  `json:"pages"`
	Error  string               `json:"error,omitempty"`
	Config binding.RenderConfig `json:"config"`
}

// ConfigUpdate is a partial render configuration, nil fields are left unchanged
type ConfigUpdate struct {
	HDPI        *float64 `json:"hdpi"`
	VDPI        *float64 `json:"vdpi"`
	Rotate      *int     `json:"rotate"`
	UseMediaBox *bool    `json:"useMediaBox"`
	Crop        *bool    `json:"crop"`
	FitWidth    *int     `json:"fitWidth"` // zoom so FitPage is this many pixels wide
	FitPage     int      `json:"fitPage"`
}

// RegisterRoutes adds every API route to the echo instance
func (serverHandler *ServerHandler) RegisterRoutes() {
	e := serverHandler.Echo

	// Document handles
	e.POST("/api/documents", serverHandler.UploadDocument)
	e.GET("/api/documents/:id", serverHandler.GetDocument)
	e.PATCH("/api/documents/:id/config", serverHandler.UpdateDocumentConfig)
	e.DELETE("/api/documents/:id", serverHandler.CloseDocument)
	e.GET("/api/handles", serverHandler.GetHandles)

	// Geometry and rendering
	e.GET("/api/documents/:id/pages/:page", serverHandler.GetPageGeometry)
	e.GET("/api/documents/:id/pages/:page/render", serverHandler.RenderPage)
	e.GET("/api/documents/:id/render", serverHandler.RenderRange)

	// Session journal
	e.GET("/api/sessions", serverHandler.GetRecentSessions)
	e.GET("/api/sessions/:id/renders", serverHandler.GetSessionRenders)

	e.GET("/api/health", serverHandler.GetHealth)
	e.GET("/api/swagger.json", serverHandler.GetSwaggerDoc)
}

// UploadDocument opens an uploaded PDF and returns its handle
// @Summary Open a PDF document
// @Description Uploads a PDF and opens it. The handle is returned even when the document is not valid.
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param pdf formData file true "PDF file"
// @Param ownerPassword formData string false "Owner password"
// @Param userPassword formData string false "User password"
// @Success 201 {object} DocumentInfo "Opened document"
// @Failure 400 {object} map[string]interface{} "Missing file"
// @Failure 413 {object} map[string]interface{} "File too large"
// @Router /documents [post]
func (serverHandler *ServerHandler) UploadDocument(context echo.Context) error {
	request := context.Request()
	file, fileHeader, err := request.FormFile("pdf")
	if err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Missing pdf form file",
		})
	}
	defer file.Close()

	maxBytes := int64(serverHandler.ServerConfig.MaxUploadMB) << 20
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return context.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{
			"error": "File too large",
			"limit": serverHandler.ServerConfig.MaxUploadMB,
		})
	}

	data, err := io.ReadAll(file)
	if err != nil {
		Logger.Error("Unable to read upload", "name", fileHeader.Filename, "error", err)
		return err
	}

	doc := serverHandler.Bridge.OpenBytes(request.Context(), fileHeader.Filename, data,
		request.FormValue("ownerPassword"), request.FormValue("userPassword"))
	Logger.Info("Opened uploaded document", "handle", doc.Handle(), "name", fileHeader.Filename, "valid", doc.IsValid())
	return context.JSON(http.StatusCreated, documentInfo(doc))
}

// GetDocument returns the validity, page count and render configuration of a handle
// @Summary Get document state
// @Tags Documents
// @Produce json
// @Param id path string true "Document handle (ULID)"
// @Success 200 {object} DocumentInfo "Document state"
// @Failure 404 {object} map[string]interface{} "Unknown handle"
// @Failure 410 {object} map[string]interface{} "Handle closed"
// @Router /documents/{id} [get]
func (serverHandler *ServerHandler) GetDocument(context echo.Context) error {
	doc, err := serverHandler.lookup(context.Param("id"))
	if err != nil {
		return handleError(context, err)
	}
	return context.JSON(http.StatusOK, documentInfo(doc))
}

// UpdateDocumentConfig changes the render configuration used by later render calls
// @Summary Update render configuration
// @Description Only the fields present in the body are changed. Changes apply to the next render call.
// @Description fitWidth scales both resolutions so page fitPage renders that many pixels wide.
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "Document handle (ULID)"
// @Param config body ConfigUpdate true "Fields to change"
// @Success 200 {object} DocumentInfo "Document state"
// @Failure 400 {object} map[string]interface{} "Invalid configuration"
// @Failure 404 {object} map[string]interface{} "Unknown handle"
// @Router /documents/{id}/config [patch]
func (serverHandler *ServerHandler) UpdateDocumentConfig(context echo.Context) error {
	doc, err := serverHandler.lookup(context.Param("id"))
	if err != nil {
		return handleError(context, err)
	}

	var update ConfigUpdate
	if err := context.Bind(&update); err != nil {
		return context.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request body",
		})
	}

	cfg := doc.Config()
	if update.HDPI != nil {
		cfg.HDPI = *update.HDPI
	}
	if update.VDPI != nil {
		cfg.VDPI = *update.VDPI
	}
	if update.Rotate != nil {
		cfg.Rotate = *update.Rotate
	}
	if update.UseMediaBox != nil {
		cfg.UseMediaBox = *update.UseMediaBox
	}
	if update.Crop != nil {
		cfg.Crop = *update.Crop
	}
	if err := doc.SetConfig(cfg); err != nil {
		return handleError(context, err)
	}
	if update.FitWidth != nil {
		if err := doc.FitWidth(update.FitPage, *update.FitWidth); err != nil {
			return handleError(context, err)
		}
		cfg = doc.Config()
	}

	Logger.Debug("Render configuration updated", "handle", doc.Handle(), "config", cfg)
	return context.JSON(http.StatusOK, documentInfo(doc))
}

// CloseDocument closes a handle
// @Summary Close a document
// @Tags Documents
// @Produce json
// @Param id path string true "Document handle (ULID)"
// @Success 200 {object} map[string]interface{} "Closed"
// @Failure 404 {object} map[string]interface{} "Unknown handle"
// @Failure 410 {object} map[string]interface{} "Handle already closed"
// @Router /documents/{id} [delete]
func (serverHandler *ServerHandler) CloseDocument(context echo.Context) error {
	doc, err := serverHandler.lookup(context.Param("id"))
	if err != nil {
		return handleError(context, err)
	}
	if err := doc.Close(); err != nil {
		return handleError(context, err)
	}
	return context.JSON(http.StatusOK, map[string]interface{}{
		"handle": doc.Handle(),
		"closed": true,
	})
}

// GetHandles lists the live document handles
// @Summary List live handles
// @Tags Documents
// @Produce json
// @Success 200 {array} binding.HandleInfo "Live handles, most recently opened first"
// @Router /handles [get]
func (serverHandler *ServerHandler) GetHandles(context echo.Context) error {
	handles := serverHandler.Bridge.Handles()
	sort.Slice(handles, func(i, j int) bool {
		return handles[i].OpenedAt.After(handles[j].OpenedAt)
	})
	if handles == nil {
		handles = []binding.HandleInfo{}
	}
	return context.JSON(http.StatusOK, handles)
}

func (serverHandler *ServerHandler) lookup(id string) (*binding.Document, error) {
	h, err := binding.ParseHandle(id)
	if err != nil {
		return nil, err
	}
	return serverHandler.Bridge.Lookup(h)
}

func documentInfo(doc *binding.Document) DocumentInfo {
	info := DocumentInfo{
		Handle: doc.Handle(),
		Valid:  doc.IsValid(),
		Config: doc.Config(),
	}
	if err := doc.OpenError(); err != nil {
		info.Error = err.Error()
		return info
	}
	pages, err := doc.GetPageCount()
	if err != nil {
		info.Error = err.Error()
	}
	info.Pages = pages
	return info
}

// errNotOpened marks a handle whose document failed to open
var errNotOpened = errors.New("document did not open")

// handleError maps binding errors onto HTTP responses
func handleError(context echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNotOpened):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, binding.ErrHandleClosed):
		status = http.StatusGone
	case errors.Is(err, binding.ErrInvalidHandle):
		status = http.StatusNotFound
	case errors.Is(err, binding.ErrPageIndexOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, binding.ErrInvalidConfig):
		status = http.StatusBadRequest
	case errors.Is(err, binding.ErrNotInitialized):
		status = http.StatusServiceUnavailable
	default:
		Logger.Error("Request failed", "path", context.Path(), "error", err)
	}
	return context.JSON(status, map[string]interface{}{
		"error": err.Error(),
	})
}
