package engine

import (
	"net/http"
	"strconv"

	"github.com/drummonds/pdfbridge/database"
	"github.com/drummonds/pdfbridge/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// GetRecentSessions retrieves recent sessions with pagination
// @Summary Get recent sessions
// @Description Retrieve the journal of recently opened documents, newest first
// @Tags Sessions
// @Produce json
// @Param limit query int false "Number of sessions to return (default: 20)"
// @Param offset query int false "Offset for pagination (default: 0)"
// @Success 200 {array} database.Session "List of sessions"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /sessions [get]
func (serverHandler *ServerHandler) GetRecentSessions(c echo.Context) error {
	limit := 20
	offset := 0

	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := c.QueryParam("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	sessions, err := serverHandler.DB.GetRecentSessions(limit, offset)
	if err != nil {
		Logger.Error("Failed to get recent sessions", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve sessions",
		})
	}
	if sessions == nil {
		sessions = []database.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// GetSessionRenders retrieves the render calls of one session
// @Summary Get renders of a session
// @Tags Sessions
// @Produce json
// @Param id path string true "Document handle (ULID)"
// @Param limit query int false "Maximum number of renders (default: all)"
// @Success 200 {array} database.Render "Render calls in call order"
// @Failure 404 {object} map[string]interface{} "Session not found"
// @Router /sessions/{id}/renders [get]
func (serverHandler *ServerHandler) GetSessionRenders(c echo.Context) error {
	handle := c.Param("id")
	if _, err := serverHandler.DB.GetSession(handle); err != nil {
		if database.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, map[string]interface{}{
				"error": "Session not found",
			})
		}
		Logger.Error("Failed to get session", "handle", handle, "error", err)
		return err
	}

	limit := 0
	if limitStr := c.QueryParam("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	renders, err := serverHandler.DB.GetRendersForSession(handle, limit)
	if err != nil {
		Logger.Error("Failed to get renders", "handle", handle, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "Failed to retrieve renders",
		})
	}
	return c.JSON(http.StatusOK, renders)
}

// GetHealth reports the engine and database state
// @Summary Health check
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]interface{} "Healthy"
// @Failure 503 {object} map[string]interface{} "Engine or database unavailable"
// @Router /health [get]
func (serverHandler *ServerHandler) GetHealth(c echo.Context) error {
	status := http.StatusOK
	result := map[string]interface{}{
		"engine":         serverHandler.Bridge.EngineName(),
		"passwordPolicy": serverHandler.Bridge.PasswordPolicy(),
		"handles":        len(serverHandler.Bridge.Handles()),
		"database":       "ok",
	}
	if result["engine"] == "" {
		status = http.StatusServiceUnavailable
		result["engine"] = "unavailable"
	}
	if err := serverHandler.DB.Ping(c.Request().Context()); err != nil {
		status = http.StatusServiceUnavailable
		result["database"] = err.Error()
	}
	return c.JSON(status, result)
}

// GetSwaggerDoc serves the registered OpenAPI document
func (serverHandler *ServerHandler) GetSwaggerDoc(c echo.Context) error {
	doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		Logger.Error("Swagger document not registered", "error", err)
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, []byte(doc))
}
