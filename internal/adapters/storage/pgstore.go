package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// PGStore implements Store on a pgx connection pool. The jobs table is the
// source of truth for queued work; ClaimNext uses FOR UPDATE SKIP LOCKED so
// concurrent workers never claim the same row.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore wraps an existing pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Connect opens a pool against dsn and returns a store over it.
func Connect(ctx context.Context, dsn string) (*PGStore, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Close releases the underlying pool.
func (s *PGStore) Close() {
	s.db.Close()
}

func (s *PGStore) EnqueueJob(ctx context.Context, p EnqueueParams) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		insert into jobs(id, name, status, priority, week, user_id, created_at, updated_at)
		values ($1, $2, 'pending', $3, $4, $5, now(), now())`,
		id, p.Name, p.Priority, p.Week, p.UserID,
	)
	if err != nil {
		return "", fmt.Errorf("enqueue job: %w", err)
	}
	return id, nil
}

func (s *PGStore) ClaimNext(ctx context.Context) (*model.Job, error) {
	row := s.db.QueryRow(ctx, `
		update jobs set status = 'running', updated_at = now()
		 where id = (
		       select id from jobs
		        where status = 'pending'
		        order by priority asc, created_at asc
		        limit 1
		        for update skip locked)
		returning id, name, status, priority, week, user_id,
		          created_at, updated_at, run_time_ms, error_message`)

	var j model.Job
	err := row.Scan(&j.ID, &j.Name, &j.Status, &j.Priority, &j.Week, &j.UserID,
		&j.CreatedAt, &j.UpdatedAt, &j.RunTimeMS, &j.ErrorMessage)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim next job: %w", err)
	}
	return &j, nil
}

func (s *PGStore) CompleteJob(ctx context.Context, id string, runTime time.Duration) error {
	return s.finish(ctx, id, model.JobCompleted, runTime, nil)
}

func (s *PGStore) FailJob(ctx context.Context, id string, runTime time.Duration, msg string) error {
	return s.finish(ctx, id, model.JobFailed, runTime, &msg)
}

// finish records a terminal transition. The status guard keeps terminal
// jobs from regressing.
func (s *PGStore) finish(ctx context.Context, id string, status model.JobStatus, runTime time.Duration, msg *string) error {
	tag, err := s.db.Exec(ctx, `
		update jobs
		   set status = $2, run_time_ms = $3, error_message = $4, updated_at = now()
		 where id = $1 and status not in ('completed', 'failed')`,
		id, status, runTime.Milliseconds(), msg,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTerminalState
	}
	return nil
}

func (s *PGStore) PendingJobs(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `select count(*) from jobs where status = 'pending'`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("pending jobs: %w", err)
	}
	return n, nil
}

func (s *PGStore) UpsertLeague(ctx context.Context, lg model.League) error {
	_, err := s.db.Exec(ctx, `
		insert into leagues(id, name, season, current_week, user_id, team_key, updated_at)
		values ($1, $2, $3, $4, $5, $6, now())
		on conflict (id) do update
		    set name = excluded.name, season = excluded.season,
		        current_week = excluded.current_week, user_id = excluded.user_id,
		        team_key = excluded.team_key, updated_at = now()`,
		lg.ID, lg.Name, lg.Season, lg.CurrentWeek, lg.UserID, lg.TeamKey,
	)
	if err != nil {
		return fmt.Errorf("upsert league: %w", err)
	}
	return nil
}

func (s *PGStore) Leagues(ctx context.Context, userID string) ([]model.League, error) {
	rows, err := s.db.Query(ctx, `
		select id, name, season, current_week, user_id, team_key, updated_at
		  from leagues
		 where $1 = '' or user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("leagues: %w", err)
	}
	defer rows.Close()

	var out []model.League
	for rows.Next() {
		var lg model.League
		if err := rows.Scan(&lg.ID, &lg.Name, &lg.Season, &lg.CurrentWeek, &lg.UserID, &lg.TeamKey, &lg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan league: %w", err)
		}
		out = append(out, lg)
	}
	return out, rows.Err()
}

func (s *PGStore) UpsertPlayers(ctx context.Context, leagueID string, players []model.Player) error {
	batch := &pgx.Batch{}
	for _, p := range players {
		batch.Queue(`
			insert into players(league_id, id, name, position, team, injury_status, bye_week)
			values ($1, $2, $3, $4, $5, $6, $7)
			on conflict (league_id, id) do update
			    set name = excluded.name, position = excluded.position,
			        team = excluded.team, injury_status = excluded.injury_status,
			        bye_week = excluded.bye_week`,
			leagueID, p.ID, p.Name, p.Position, p.Team, p.InjuryStatus, p.ByeWeek)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert players: %w", err)
	}
	return nil
}

func (s *PGStore) Players(ctx context.Context, leagueID string) ([]model.Player, error) {
	rows, err := s.db.Query(ctx, `
		select id, name, position, team, injury_status, bye_week
		  from players where league_id = $1`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("players: %w", err)
	}
	defer rows.Close()

	var out []model.Player
	for rows.Next() {
		var p model.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Position, &p.Team, &p.InjuryStatus, &p.ByeWeek); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReplaceRosters swaps a league's roster entries in one transaction so
// readers never observe a half-synced roster.
func (s *PGStore) ReplaceRosters(ctx context.Context, leagueID string, entries []model.RosterEntry) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("replace rosters: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, `delete from roster_entries where league_id = $1`, leagueID); err != nil {
		return fmt.Errorf("clear rosters: %w", err)
	}
	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			insert into roster_entries(league_id, team_key, player_id, slot)
			values ($1, $2, $3, $4)`,
			leagueID, e.TeamKey, e.PlayerID, e.Slot); err != nil {
			return fmt.Errorf("insert roster entry: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PGStore) Rosters(ctx context.Context, leagueID string) ([]model.RosterEntry, error) {
	rows, err := s.db.Query(ctx, `
		select team_key, player_id, slot from roster_entries where league_id = $1`, leagueID)
	if err != nil {
		return nil, fmt.Errorf("rosters: %w", err)
	}
	defer rows.Close()

	var out []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.TeamKey, &e.PlayerID, &e.Slot); err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PGStore) InsertTransactions(ctx context.Context, leagueID string, txs []model.Transaction) error {
	batch := &pgx.Batch{}
	for _, t := range txs {
		batch.Queue(`
			insert into transactions(id, league_id, type, player_id, team_key, week, at)
			values ($1, $2, $3, $4, $5, $6, $7)
			on conflict (id) do nothing`,
			t.ID, leagueID, t.Type, t.PlayerID, t.TeamKey, t.Week, t.At)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert transactions: %w", err)
	}
	return nil
}

func (s *PGStore) UpsertWeekStats(ctx context.Context, rows []model.PlayerWeekStat) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		stats, err := json.Marshal(r.Stats)
		if err != nil {
			return fmt.Errorf("marshal week stats: %w", err)
		}
		batch.Queue(`
			insert into player_week_stats(league_id, player_id, season, week, points, stats)
			values ($1, $2, $3, $4, $5, $6)
			on conflict (league_id, player_id, season, week) do update
			    set points = excluded.points, stats = excluded.stats`,
			r.LeagueID, r.PlayerID, r.Season, r.Week, r.Points, stats)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert week stats: %w", err)
	}
	return nil
}

func (s *PGStore) WeekStats(ctx context.Context, leagueID string, season, fromWeek, toWeek int) ([]model.PlayerWeekStat, error) {
	rows, err := s.db.Query(ctx, `
		select player_id, week, points, stats
		  from player_week_stats
		 where league_id = $1 and season = $2 and week between $3 and $4`,
		leagueID, season, fromWeek, toWeek)
	if err != nil {
		return nil, fmt.Errorf("week stats: %w", err)
	}
	defer rows.Close()

	var out []model.PlayerWeekStat
	for rows.Next() {
		r := model.PlayerWeekStat{LeagueID: leagueID, Season: season}
		var stats []byte
		if err := rows.Scan(&r.PlayerID, &r.Week, &r.Points, &stats); err != nil {
			return nil, fmt.Errorf("scan week stats: %w", err)
		}
		if err := json.Unmarshal(stats, &r.Stats); err != nil {
			return nil, fmt.Errorf("unmarshal week stats: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) UpsertMetricRows(ctx context.Context, rows []model.MetricRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		raw, err := json.Marshal(r.Raw)
		if err != nil {
			return fmt.Errorf("marshal metric row: %w", err)
		}
		rolling, err := json.Marshal(r.Rolling)
		if err != nil {
			return fmt.Errorf("marshal metric row: %w", err)
		}
		normalized, err := json.Marshal(r.Normalized)
		if err != nil {
			return fmt.Errorf("marshal metric row: %w", err)
		}
		batch.Queue(`
			insert into metric_rows(league_id, subject_id, season, week, raw, rolling, normalized)
			values ($1, $2, $3, $4, $5, $6, $7)
			on conflict (league_id, subject_id, season, week) do update
			    set raw = excluded.raw, rolling = excluded.rolling,
			        normalized = excluded.normalized`,
			r.LeagueID, r.SubjectID, r.Season, r.Week, raw, rolling, normalized)
	}
	if err := s.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert metric rows: %w", err)
	}
	return nil
}

func (s *PGStore) MetricRows(ctx context.Context, leagueID string, season, week int) ([]model.MetricRow, error) {
	rows, err := s.db.Query(ctx, `
		select subject_id, raw, rolling, normalized
		  from metric_rows
		 where league_id = $1 and season = $2 and week = $3`,
		leagueID, season, week)
	if err != nil {
		return nil, fmt.Errorf("metric rows: %w", err)
	}
	defer rows.Close()

	var out []model.MetricRow
	for rows.Next() {
		r := model.MetricRow{LeagueID: leagueID, Season: season, Week: week}
		var raw, rolling, normalized []byte
		if err := rows.Scan(&r.SubjectID, &raw, &rolling, &normalized); err != nil {
			return nil, fmt.Errorf("scan metric row: %w", err)
		}
		if err := json.Unmarshal(raw, &r.Raw); err != nil {
			return nil, fmt.Errorf("unmarshal metric row: %w", err)
		}
		if err := json.Unmarshal(rolling, &r.Rolling); err != nil {
			return nil, fmt.Errorf("unmarshal metric row: %w", err)
		}
		if err := json.Unmarshal(normalized, &r.Normalized); err != nil {
			return nil, fmt.Errorf("unmarshal metric row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PGStore) Credential(ctx context.Context, userID string) (*model.Credential, error) {
	row := s.db.QueryRow(ctx, `
		select user_id, access_token, refresh_token, expires_at
		  from credentials where user_id = $1`, userID)

	var c model.Credential
	err := row.Scan(&c.UserID, &c.AccessToken, &c.RefreshToken, &c.ExpiresAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("credential: %w", err)
	}
	return &c, nil
}

func (s *PGStore) SaveCredential(ctx context.Context, cred *model.Credential) error {
	_, err := s.db.Exec(ctx, `
		insert into credentials(user_id, access_token, refresh_token, expires_at)
		values ($1, $2, $3, $4)
		on conflict (user_id) do update
		    set access_token = excluded.access_token,
		        refresh_token = excluded.refresh_token,
		        expires_at = excluded.expires_at`,
		cred.UserID, cred.AccessToken, cred.RefreshToken, cred.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *PGStore) SaveAdvice(ctx context.Context, leagueID, userID string, advice model.Advice) error {
	payload, err := json.Marshal(advice)
	if err != nil {
		return fmt.Errorf("marshal advice: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		insert into advice_cache(league_id, user_id, advice, updated_at)
		values ($1, $2, $3, now())
		on conflict (league_id, user_id) do update
		    set advice = excluded.advice, updated_at = now()`,
		leagueID, userID, payload,
	)
	if err != nil {
		return fmt.Errorf("save advice: %w", err)
	}
	return nil
}

func (s *PGStore) Advice(ctx context.Context, leagueID, userID string) (model.Advice, bool, error) {
	var payload []byte
	err := s.db.QueryRow(ctx, `
		select advice from advice_cache where league_id = $1 and user_id = $2`,
		leagueID, userID).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("advice: %w", err)
	}
	var advice model.Advice
	if err := json.Unmarshal(payload, &advice); err != nil {
		return nil, false, fmt.Errorf("unmarshal advice: %w", err)
	}
	return advice, true, nil
}
