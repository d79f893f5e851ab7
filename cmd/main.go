package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/orgball2608/reel-ranker/internal/app"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
	"go.uber.org/fx"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logger.New(logger.Opts{}).Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Opts{Env: cfg.App.Env, SentryDSN: cfg.App.SentryUrl})

	application := fx.New(
		fx.Logger(log),
		app.New(cfg),
	)

	// Start the application
	if err := application.Start(context.Background()); err != nil {
		log.Error("Failed to start application", "error", err)
		os.Exit(1)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	// Gracefully shutdown the application
	if err := application.Stop(context.Background()); err != nil {
		log.Error("Failed to stop application", "error", err)
		os.Exit(1)
	}
}
