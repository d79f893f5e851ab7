package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/orgball2608/reel-ranker/internal/migrations"
	"github.com/orgball2608/reel-ranker/pkg/config"
	"github.com/orgball2608/reel-ranker/pkg/logger"
)

const usage = "migrate <up|up-by-one|up-to V|down|down-to V|redo|reset|status|version>"

var errUsage = errors.New(usage)

func main() {
	log := logger.New(logger.Opts{Env: "development"}).WithComponent("Migrate")

	if err := run(os.Args[1:]); err != nil {
		log.Error("Migration failed", "error", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	log.Info("Migration finished", "command", os.Args[1])
}

func run(argv []string) error {
	if len(argv) == 0 {
		return errUsage
	}
	command, args := argv[0], argv[1:]

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := migrations.Open(ctx, cfg.GetDSN())
	if err != nil {
		return err
	}
	defer db.Close()

	return migrations.Run(ctx, db, command, args...)
}
