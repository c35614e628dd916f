package jobs

import (
	"context"
	"fmt"
	"sort"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// Metric families per position group. "points" rides along so the composite
// score always has its highest-weighted input.
var (
	defenseMetrics = []string{"points", "points_allowed", "sacks", "turnovers", "yards_allowed"}
	kickerMetrics  = []string{"points", "fg_made", "fg_attempted", "fg_long", "xp_made"}
)

// computeMetrics derives rolling averages and normalized values for one
// position group's metric family. Defense counters normalize by z-score;
// kicker counters by min-max. Output rows overwrite any prior run for the
// same (league, subject, season, week).
type computeMetrics struct {
	deps     Deps
	name     string
	position model.Position
	metrics  []string
	mode     stats.NormMode
}

func newComputeMetrics(deps Deps, name string, position model.Position, keys []string, mode stats.NormMode) *computeMetrics {
	return &computeMetrics{deps: deps, name: name, position: position, metrics: keys, mode: mode}
}

func (j *computeMetrics) Name() string { return j.name }

func (j *computeMetrics) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		week := weekFor(req, lg)
		if week < 1 {
			return 0, fmt.Errorf("league %s has no current week yet", lg.ID)
		}
		season := seasonFor(j.deps, lg)

		players, err := j.deps.Store.Players(ctx, lg.ID)
		if err != nil {
			return 0, fmt.Errorf("load players: %w", err)
		}
		subjects := make(map[string]bool)
		for _, p := range players {
			if p.Position == j.position {
				subjects[p.ID] = true
			}
		}
		if len(subjects) == 0 {
			return 0, nil
		}

		statRows, err := j.deps.Store.WeekStats(ctx, lg.ID, season, 1, week)
		if err != nil {
			return 0, fmt.Errorf("load week stats: %w", err)
		}
		series := buildSeries(statRows, subjects, week)
		if len(series) == 0 {
			return 0, nil
		}

		rows := stats.Aggregate(series, lg.ID, season, week, j.metrics, j.mode, j.deps.Config.RollingWindowWeeks)
		if err := j.deps.Store.UpsertMetricRows(ctx, rows); err != nil {
			return 0, fmt.Errorf("store metric rows: %w", err)
		}
		for range rows {
			metrics.RecordMetricRowUpserted()
		}
		return len(rows), nil
	})
}

// buildSeries projects raw stat rows into per-subject weekly series,
// keeping only subjects that have a row for the target week.
func buildSeries(rows []model.PlayerWeekStat, subjects map[string]bool, week int) []stats.SubjectSeries {
	weeks := make(map[string]map[int]map[string]float64)
	for _, row := range rows {
		if !subjects[row.PlayerID] {
			continue
		}
		byWeek := weeks[row.PlayerID]
		if byWeek == nil {
			byWeek = make(map[int]map[string]float64)
			weeks[row.PlayerID] = byWeek
		}
		m := make(map[string]float64, len(row.Stats)+1)
		m["points"] = row.Points
		for k, v := range row.Stats {
			m[k] = v
		}
		byWeek[row.Week] = m
	}

	out := make([]stats.SubjectSeries, 0, len(weeks))
	for id, byWeek := range weeks {
		if _, ok := byWeek[week]; !ok {
			continue
		}
		out = append(out, stats.SubjectSeries{SubjectID: id, Weeks: byWeek})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out
}
