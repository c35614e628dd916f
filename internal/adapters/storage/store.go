// Package storage is the narrow interface the pipeline holds against the
// relational store: the durable job queue plus the synced entities and
// derived metric rows. Schema and stored procedures stay on the database
// side; this package only reads and writes the contract below.
package storage

import (
	"context"
	"time"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// EnqueueParams names one registry entry plus optional parameters.
type EnqueueParams struct {
	Name     string
	Priority int
	Week     *int
	UserID   *string
}

// Store is the single point of coordination across worker instances.
type Store interface {
	// Job queue. ClaimNext selects the lowest-priority-value, then oldest,
	// pending job and atomically marks it running; it returns nil,nil when
	// no pending job exists. Terminal transitions always record the run
	// time, and a job never regresses from a terminal state.
	EnqueueJob(ctx context.Context, p EnqueueParams) (string, error)
	ClaimNext(ctx context.Context) (*model.Job, error)
	CompleteJob(ctx context.Context, id string, runTime time.Duration) error
	FailJob(ctx context.Context, id string, runTime time.Duration, msg string) error
	PendingJobs(ctx context.Context) (int, error)

	// Synced entities.
	UpsertLeague(ctx context.Context, lg model.League) error
	Leagues(ctx context.Context, userID string) ([]model.League, error)
	UpsertPlayers(ctx context.Context, leagueID string, players []model.Player) error
	Players(ctx context.Context, leagueID string) ([]model.Player, error)
	ReplaceRosters(ctx context.Context, leagueID string, entries []model.RosterEntry) error
	Rosters(ctx context.Context, leagueID string) ([]model.RosterEntry, error)
	InsertTransactions(ctx context.Context, leagueID string, txs []model.Transaction) error

	// Raw weekly stats and derived metric rows. Upserts key on
	// (league, subject, season, week) so repeated runs are idempotent
	// overwrites.
	UpsertWeekStats(ctx context.Context, rows []model.PlayerWeekStat) error
	WeekStats(ctx context.Context, leagueID string, season, fromWeek, toWeek int) ([]model.PlayerWeekStat, error)
	UpsertMetricRows(ctx context.Context, rows []model.MetricRow) error
	MetricRows(ctx context.Context, leagueID string, season, week int) ([]model.MetricRow, error)

	// Provider credentials, owned per user plus the administrative account.
	Credential(ctx context.Context, userID string) (*model.Credential, error)
	SaveCredential(ctx context.Context, cred *model.Credential) error

	// Cached recommendation read model. Derived data only; the refresh job
	// overwrites it wholesale.
	SaveAdvice(ctx context.Context, leagueID, userID string, advice model.Advice) error
	Advice(ctx context.Context, leagueID, userID string) (model.Advice, bool, error)
}
