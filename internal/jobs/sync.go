package jobs

import (
	"context"
	"fmt"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// syncLeagueSettings refreshes league metadata, most importantly the
// provider's notion of the current week, which every other job keys off.
type syncLeagueSettings struct {
	deps Deps
}

func (j *syncLeagueSettings) Name() string { return JobSyncLeagueSettings }

func (j *syncLeagueSettings) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		fresh, err := j.deps.Fetch.LeagueSettings(ctx, req.Credential, lg.ID)
		if err != nil {
			return 0, fmt.Errorf("fetch settings: %w", err)
		}
		// Ownership is local state; the settings payload does not carry it.
		fresh.UserID = lg.UserID
		if fresh.TeamKey == "" {
			fresh.TeamKey = lg.TeamKey
		}
		if err := j.deps.Store.UpsertLeague(ctx, fresh); err != nil {
			return 0, fmt.Errorf("store league: %w", err)
		}
		return 1, nil
	})
}

// syncRosters replaces every team's roster for each league in scope.
type syncRosters struct {
	deps Deps
}

func (j *syncRosters) Name() string { return JobSyncRosters }

func (j *syncRosters) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		entries, err := j.deps.Fetch.Rosters(ctx, req.Credential, lg.ID)
		if err != nil {
			return 0, fmt.Errorf("fetch rosters: %w", err)
		}
		if err := j.deps.Store.ReplaceRosters(ctx, lg.ID, entries); err != nil {
			return 0, fmt.Errorf("store rosters: %w", err)
		}
		return len(entries), nil
	})
}

// syncTransactions appends the add/drop/trade feed. Inserts are
// conflict-ignoring, so re-running over an already-seen window is a no-op.
type syncTransactions struct {
	deps Deps
}

func (j *syncTransactions) Name() string { return JobSyncTransactions }

func (j *syncTransactions) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		txs, err := j.deps.Fetch.Transactions(ctx, req.Credential, lg.ID)
		if err != nil {
			return 0, fmt.Errorf("fetch transactions: %w", err)
		}
		if err := j.deps.Store.InsertTransactions(ctx, lg.ID, txs); err != nil {
			return 0, fmt.Errorf("store transactions: %w", err)
		}
		return len(txs), nil
	})
}

// syncPlayers refreshes the player master data, including injury status and
// bye weeks. Upserts run in bounded chunks to keep batches small.
type syncPlayers struct {
	deps Deps
}

func (j *syncPlayers) Name() string { return JobSyncPlayers }

func (j *syncPlayers) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		players, err := j.deps.Fetch.Players(ctx, req.Credential, lg.ID)
		if err != nil {
			return 0, fmt.Errorf("fetch players: %w", err)
		}
		size := j.deps.Config.EntityBatchSize
		if size < 1 {
			size = len(players)
		}
		for start := 0; start < len(players); start += size {
			end := start + size
			if end > len(players) {
				end = len(players)
			}
			if err := j.deps.Store.UpsertPlayers(ctx, lg.ID, players[start:end]); err != nil {
				return 0, fmt.Errorf("store players [%d:%d]: %w", start, end, err)
			}
		}
		return len(players), nil
	})
}

// syncWeekStats pulls the raw per-player stat rows for one week per league.
type syncWeekStats struct {
	deps Deps
}

func (j *syncWeekStats) Name() string { return JobSyncWeekStats }

func (j *syncWeekStats) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		week := weekFor(req, lg)
		if week < 1 {
			return 0, fmt.Errorf("league %s has no current week yet", lg.ID)
		}
		rows, err := j.deps.Fetch.WeekStats(ctx, req.Credential, lg.ID, seasonFor(j.deps, lg), week)
		if err != nil {
			return 0, fmt.Errorf("fetch week %d stats: %w", week, err)
		}
		if err := j.deps.Store.UpsertWeekStats(ctx, rows); err != nil {
			return 0, fmt.Errorf("store week %d stats: %w", week, err)
		}
		return len(rows), nil
	})
}
