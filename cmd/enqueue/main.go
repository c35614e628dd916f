// The enqueue binary is a dev tool for feeding the job queue by hand:
// insert one or more jobs, optionally waking the worker compute through
// the control API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/compute"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/storage"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/jobs"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

func main() {
	var (
		name     = flag.String("name", jobs.JobSyncLeagueSettings, "job name to enqueue")
		priority = flag.Int("priority", 5, "priority, lower runs first")
		week     = flag.Int("week", 0, "week override, 0 uses the league's current week")
		user     = flag.String("user", "", "user scope, empty runs across all leagues")
		count    = flag.Int("count", 1, "number of copies to enqueue")
		wake     = flag.Bool("wake", false, "ensure the worker compute is running afterwards")
	)
	flag.Parse()

	ctx := context.Background()
	if err := logger.Init(); err != nil {
		os.Exit(1)
	}
	log := logger.Get().Named("enqueue")

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "load config", logger.Error(err))
		os.Exit(1)
	}
	if cfg.PostgresDSN == "" {
		log.Error(ctx, "enqueue needs a postgres dsn, the in-memory store dies with this process")
		os.Exit(1)
	}

	store, err := storage.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error(ctx, "connect storage", logger.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	params := storage.EnqueueParams{Name: *name, Priority: *priority}
	if *week > 0 {
		params.Week = week
	}
	if *user != "" {
		params.UserID = user
	}

	ids := make([]string, 0, *count)
	for i := 0; i < *count; i++ {
		id, err := store.EnqueueJob(ctx, params)
		if err != nil {
			log.Error(ctx, "enqueue job", logger.Error(err))
			os.Exit(1)
		}
		ids = append(ids, id)
	}
	fmt.Printf("enqueued %d %s job(s): %s\n", len(ids), *name, strings.Join(ids, ", "))

	if *wake {
		if cfg.ControlAPIURL == "" {
			log.Warn(ctx, "no control api configured, skipping wake")
			return
		}
		mgr := compute.NewManager(cfg.ControlAPIURL, cfg.ControlAppID,
			compute.WithToken(cfg.ControlAPIToken))
		mgr.EnsureRunning(ctx)
	}
}
