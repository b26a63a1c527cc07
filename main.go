package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/drummonds/pdfbridge/binding"
	config "github.com/drummonds/pdfbridge/config"
	database "github.com/drummonds/pdfbridge/database"
	engine "github.com/drummonds/pdfbridge/engine"
	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
	binding.Logger = Logger
	pdfrenderer.Logger = Logger
}

// @title pdfbridge API
// @version 1.0
// @description Opens PDF documents by handle, answers page geometry queries and renders pages,
// @description page ranges and page regions as PNG.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /api
// @schemes http https

// @tag.name Documents
// @tag.description Document handle lifecycle and render configuration

// @tag.name Rendering
// @tag.description Page geometry and rasterization

// @tag.name Sessions
// @tag.description Journal of opened documents and render calls

// @tag.name Admin
// @tag.description Service health check

func main() {
	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Show info banner if using ephemeral database
	if serverConfig.DatabaseType == "ephemeral" {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("EPHEMERAL DATABASE MODE")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("• Session journal will be destroyed on exit")
		fmt.Println("• Needs initdb and postgres on PATH")
		fmt.Println(strings.Repeat("=", 50) + "\n")
	}

	// Setup database (handles ephemeral, postgres, cockroachdb, sqlite, none)
	Logger.Info("Setting up database", "type", serverConfig.DatabaseType)
	db, err := database.NewRepository(serverConfig)
	if err != nil {
		Logger.Error("Database setup failed, session journal disabled", "error", err)
		db = database.NopRepository{}
	} else {
		Logger.Info("Database setup complete")
	}
	defer db.Close()

	bridge := binding.NewBridge(binding.Options{
		Engine: pdfrenderer.Config{
			Name:         serverConfig.PDFEngine,
			InstanceWait: serverConfig.InstanceWait,
		},
		PasswordPolicy: binding.PasswordPolicy(serverConfig.PasswordPolicy),
		DefaultConfig: binding.RenderConfig{
			HDPI: serverConfig.DefaultHDPI,
			VDPI: serverConfig.DefaultVDPI,
		},
		Journal: db,
	})
	defer bridge.Close()

	e := echo.New()
	e.HideBanner = true
	Logger.Info("Echo created")

	// JSON errors for API routes
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}

		if code == http.StatusNotFound && strings.HasPrefix(c.Request().URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, map[string]string{
				"error":   "Not Found",
				"message": "The requested API endpoint does not exist",
				"path":    c.Request().URL.Path,
			})
			return
		}

		// For other errors, use default handler
		e.DefaultHTTPErrorHandler(err, c)
	}

	serverHandler := engine.ServerHandler{Bridge: bridge, DB: db, Echo: e, ServerConfig: serverConfig} //injecting the bridge and database into the handler for routes
	Logger.Info("About to run startup checks")
	if err := serverHandler.StartupChecks(ctx); err != nil { //Run all the sanity checks
		Logger.Error("Startup checks failed", "error", err)
		fmt.Println("Unable to start the PDF engine:", err)
		os.Exit(1)
	}
	Logger.Info("Startup checks complete, about to initialize schedules")
	scheduler := serverHandler.InitializeSchedules() //initialize all the cron jobs
	defer scheduler.Stop()

	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", serverConfig.MaxUploadMB+1)))

	//Start the API routes - all under /api/* prefix for clarity
	serverHandler.RegisterRoutes()

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")
	go startServer(e, &serverConfig)

	<-ctx.Done()
	Logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		Logger.Error("Server shutdown failed", "error", err)
	}
}

// startServer tries to start the server with automatic port increment if the port is in use
func startServer(e *echo.Echo, serverConfig *config.ServerConfig) {
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		// Check if error is "address already in use"
		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)

			// Increment port for next attempt
			portNum := 0
			fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
			portNum++
			serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				os.Exit(1)
			}
			continue
		}
		if startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			Logger.Error("Failed to start server", "error", startErr)
			os.Exit(1)
		}
		break
	}

	if serverConfig.ListenAddrPort != startPort {
		Logger.Warn("Server ran on alternative port due to conflicts",
			"requested_port", startPort,
			"actual_port", serverConfig.ListenAddrPort)
	}
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "address already in use")
}
