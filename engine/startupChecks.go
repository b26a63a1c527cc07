package engine

import (
	"context"
	"fmt"
	"time"
)

// StartupChecks performs all the checks to make sure everything works
func (serverHandler *ServerHandler) StartupChecks(ctx context.Context) error {
	if err := serverHandler.engineChecks(ctx); err != nil {
		return err
	}
	databaseChecks(ctx, serverHandler)
	return nil
}

// engineChecks initializes the PDF engine. Without it nothing can be served.
func (serverHandler *ServerHandler) engineChecks(ctx context.Context) error {
	start := time.Now()
	if err := serverHandler.Bridge.Init(ctx); err != nil {
		Logger.Error("PDF engine unavailable", "engine", serverHandler.ServerConfig.PDFEngine, "error", err)
		return fmt.Errorf("startup check failed: %w", err)
	}
	Logger.Info("PDF engine ready", "engine", serverHandler.Bridge.EngineName(), "took", time.Since(start))
	return nil
}

// databaseChecks pings the journal. An unreachable journal is logged, rendering still works.
func databaseChecks(ctx context.Context, serverHandler *ServerHandler) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := serverHandler.DB.Ping(ctx); err != nil {
		Logger.Warn("Journal database unreachable", "type", serverHandler.ServerConfig.DatabaseType, "error", err)
		return
	}
	Logger.Info("Journal database reachable", "type", serverHandler.ServerConfig.DatabaseType)
}
