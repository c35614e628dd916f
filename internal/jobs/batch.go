package jobs

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// forEachLeague fans fn out over the leagues in the request's scope, bounded
// by the configured batch width. A failing league is logged and counted but
// never aborts its siblings; the job errors only when every league failed.
func forEachLeague(ctx context.Context, d Deps, req Request, jobName string, fn func(ctx context.Context, lg model.League) (int, error)) (Result, error) {
	userID := ""
	if req.UserID != nil {
		userID = *req.UserID
	}
	leagues, err := d.Store.Leagues(ctx, userID)
	if err != nil {
		return Result{}, fmt.Errorf("list leagues: %w", err)
	}
	if len(leagues) == 0 {
		return Result{Summary: "no leagues in scope"}, nil
	}

	width := d.Config.LeagueBatchSize
	if width < 1 {
		width = 1
	}

	var records, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(width)
	for _, lg := range leagues {
		lg := lg
		g.Go(func() error {
			n, err := fn(ctx, lg)
			if err != nil {
				failed.Add(1)
				metrics.RecordBatchEntityFailure()
				d.Logger.Warn(ctx, "league batch entry failed",
					logger.String("job", jobName),
					logger.String("league", lg.ID),
					logger.Error(err),
				)
				return nil
			}
			records.Add(int64(n))
			return nil
		})
	}
	_ = g.Wait() // closures never return an error

	if failed.Load() == int64(len(leagues)) {
		return Result{}, fmt.Errorf("%w: %s across %d leagues", ErrBatchFailed, jobName, len(leagues))
	}
	return Result{
		Records: int(records.Load()),
		Summary: fmt.Sprintf("%d leagues, %d records, %d failed", len(leagues), records.Load(), failed.Load()),
	}, nil
}

// weekFor resolves the effective week for one league: the request override
// when present, the league's current week otherwise.
func weekFor(req Request, lg model.League) int {
	if req.Week != nil {
		return *req.Week
	}
	return lg.CurrentWeek
}

// seasonFor prefers the league's synced season over the configured default.
func seasonFor(d Deps, lg model.League) int {
	if lg.Season != 0 {
		return lg.Season
	}
	return d.Config.Season
}
