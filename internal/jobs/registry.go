// Package jobs holds the registry of named sync functions the worker loop
// dispatches to. Each function owns one slice of the pipeline: pulling
// provider data into storage, deriving metric rows, or refreshing the
// recommendation read model.
package jobs

import (
	"context"
	"sort"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/adapters/storage"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/config"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/recommend"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
)

// Registered job names. The queue stores these strings; anything else is an
// unknown job.
const (
	JobSyncLeagueSettings     = "sync_league_settings"
	JobSyncRosters            = "sync_rosters"
	JobSyncTransactions       = "sync_transactions"
	JobSyncPlayers            = "sync_players"
	JobSyncWeekStats          = "sync_week_stats"
	JobComputeDefenseMetrics  = "compute_defense_metrics"
	JobComputeKickerMetrics   = "compute_kicker_metrics"
	JobRefreshRecommendations = "refresh_recommendations"
)

// Request carries the per-run parameters resolved by the worker before
// dispatch. Week and UserID are optional; jobs fall back to the league's
// current week and to all leagues respectively.
type Request struct {
	Credential *model.Credential
	Week       *int
	UserID     *string
}

// Result summarizes a completed run for the job record.
type Result struct {
	Records int
	Summary string
}

// SyncFunc is one registered unit of work.
type SyncFunc interface {
	Name() string
	Run(ctx context.Context, req Request) (Result, error)
}

// Fetcher is the slice of the provider client jobs call. Kept as an
// interface so job tests run against a fake.
type Fetcher interface {
	LeagueSettings(ctx context.Context, cred *model.Credential, leagueID string) (model.League, error)
	Rosters(ctx context.Context, cred *model.Credential, leagueID string) ([]model.RosterEntry, error)
	Transactions(ctx context.Context, cred *model.Credential, leagueID string) ([]model.Transaction, error)
	Players(ctx context.Context, cred *model.Credential, leagueID string) ([]model.Player, error)
	WeekStats(ctx context.Context, cred *model.Credential, leagueID string, season, week int) ([]model.PlayerWeekStat, error)
}

// Deps bundles the collaborators shared by every job.
type Deps struct {
	Store  storage.Store
	Fetch  Fetcher
	Engine *recommend.Engine
	Config *config.Config
	Logger logger.Logger
}

// Registry maps job names to their implementations. Built once at startup;
// read-only afterwards.
type Registry struct {
	byName map[string]SyncFunc
}

// NewRegistry wires the full registered job set against deps.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = logger.Get().Named("jobs")
	}
	all := []SyncFunc{
		&syncLeagueSettings{deps: deps},
		&syncRosters{deps: deps},
		&syncTransactions{deps: deps},
		&syncPlayers{deps: deps},
		&syncWeekStats{deps: deps},
		newComputeMetrics(deps, JobComputeDefenseMetrics, model.Defense, defenseMetrics, stats.NormZScore),
		newComputeMetrics(deps, JobComputeKickerMetrics, model.Kicker, kickerMetrics, stats.NormMinMax),
		&refreshRecommendations{deps: deps},
	}
	byName := make(map[string]SyncFunc, len(all))
	for _, j := range all {
		byName[j.Name()] = j
	}
	return &Registry{byName: byName}
}

// Lookup returns the job registered under name, with ok=false for unknown
// names.
func (r *Registry) Lookup(name string) (SyncFunc, bool) {
	j, ok := r.byName[name]
	return j, ok
}

// Names returns the registered job names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
