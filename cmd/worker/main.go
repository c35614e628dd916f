// The worker binary runs one bounded pass of the sync pipeline: it claims
// jobs from the durable queue until a ceiling is hit or it receives a
// termination signal, serving health, metrics, and the recommendations
// read API while it runs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/app"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	log := logger.Get().Named("main")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "bad log level, keeping info", logger.String("level", cfg.LogLevel))
	}

	svc, err := app.New(ctx, cfg)
	if err != nil {
		log.Error(ctx, "wire service", logger.Error(err))
		os.Exit(1)
	}

	if err := svc.Run(ctx); err != nil {
		log.Error(ctx, "worker run", logger.Error(err))
		os.Exit(1)
	}
}
