// Package main is the entry point for the trader signal evaluation service.
// It scores disclosed politician trades, sizes positions per agent strategy,
// and simulates agent portfolios over historical signal data.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hadoku/trader/internal/config"
	"github.com/hadoku/trader/internal/di"
	"github.com/hadoku/trader/internal/modules/agents"
	"github.com/hadoku/trader/internal/scheduler"
	"github.com/hadoku/trader/internal/server"
	"github.com/hadoku/trader/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting trader")

	// Wire all dependencies: databases, repositories, services, jobs
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	// Sync agent definitions from the YAML file into agents.db, when configured.
	// Agents created via the API are left untouched.
	if cfg.AgentsFile != "" {
		if err := agents.SyncFile(cfg.AgentsFile, container.AgentRepo, log); err != nil {
			log.Fatal().Err(err).Str("path", cfg.AgentsFile).Msg("Failed to sync agents file")
		}
	}

	// Recompute politician stats on boot so scoring starts from fresh numbers,
	// then keep them fresh in the background.
	sched := scheduler.New(log)
	if err := sched.RunNow(container.StatsRefreshJob); err != nil {
		log.Warn().Err(err).Msg("Initial politician stats refresh failed")
	}
	if err := sched.AddJob("0 0 2 * * *", container.StatsRefreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register stats refresh job")
	}
	if err := sched.AddJob("0 0 4 * * 0", container.PruneJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache prune job")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	// Start server in goroutine so the main thread can wait on signals
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	sched.Stop()

	// Give in-flight requests up to 10 seconds to finish
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
