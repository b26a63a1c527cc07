package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// sessionRetention is how long closed sessions stay in the journal
const sessionRetention = 30 * 24 * time.Hour

// InitializeSchedules starts the idle handle reaper and the journal cleanup.
// The returned cron must be stopped on shutdown.
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	c := cron.New()

	var reapJob cron.Job
	reapJob = cron.FuncJob(serverHandler.reapJobFunc)
	reapJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(reapJob) //ensure we don't kick off another if old one is still running
	interval := serverHandler.ServerConfig.ReapInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if _, err := c.AddJob(fmt.Sprintf("@every %s", interval), reapJob); err != nil {
		Logger.Error("Unable to schedule idle handle reaper", "error", err)
	}
	Logger.Info("Adding idle handle reaper", "interval", interval, "maxIdle", serverHandler.ServerConfig.HandleIdle)

	var cleanupJob cron.Job
	cleanupJob = cron.FuncJob(serverHandler.cleanupJobFunc)
	cleanupJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(cleanupJob)
	if _, err := c.AddJob("@daily", cleanupJob); err != nil {
		Logger.Error("Unable to schedule journal cleanup", "error", err)
	}

	c.Start()
	return c
}

// reapJobFunc closes handles that have not been used for HandleIdle
func (serverHandler *ServerHandler) reapJobFunc() {
	maxIdle := serverHandler.ServerConfig.HandleIdle
	if maxIdle <= 0 {
		return
	}
	if closed := serverHandler.Bridge.CloseIdle(maxIdle); closed > 0 {
		Logger.Info("Closed idle document handles", "count", closed, "maxIdle", maxIdle)
	}
}

// cleanupJobFunc removes old closed sessions from the journal
func (serverHandler *ServerHandler) cleanupJobFunc() {
	deleted, err := serverHandler.DB.DeleteOldSessions(sessionRetention)
	if err != nil {
		Logger.Error("Journal cleanup failed", "error", err)
		return
	}
	Logger.Info("Journal cleanup finished", "deletedSessions", deleted)
}
