package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/propdesk/propdesk/internal/tasks"
	"github.com/propdesk/propdesk/pkg/config"
	"github.com/propdesk/propdesk/pkg/queue"
	"github.com/propdesk/propdesk/pkg/util"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting PropDesk worker")

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 10)

	// Register task handlers
	handler := tasks.NewHandler(logger, nil)
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down worker...")
		srv.Shutdown()
	}()

	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}
