package jobs

import (
	"context"
	"fmt"
	"sort"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/recommend"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
)

// refreshRecommendations recomputes the cached advice read model for each
// league in scope: composite scores from the current week's metric rows,
// fed through the recommendation engine, written back wholesale.
type refreshRecommendations struct {
	deps Deps
}

func (j *refreshRecommendations) Name() string { return JobRefreshRecommendations }

func (j *refreshRecommendations) Run(ctx context.Context, req Request) (Result, error) {
	return forEachLeague(ctx, j.deps, req, j.Name(), func(ctx context.Context, lg model.League) (int, error) {
		week := weekFor(req, lg)
		if week < 1 {
			return 0, fmt.Errorf("league %s has no current week yet", lg.ID)
		}
		in, err := buildAdviceInput(ctx, j.deps, lg, week)
		if err != nil {
			return 0, err
		}

		advice := j.deps.Engine.Build(ctx, in)
		if err := j.deps.Store.SaveAdvice(ctx, lg.ID, lg.UserID, advice); err != nil {
			return 0, fmt.Errorf("store advice: %w", err)
		}
		return len(advice), nil
	})
}

// buildAdviceInput assembles the engine input for one league week: the owner's
// scored roster, the scored unrostered pool, and recent point histories for
// the variance flag. Players without a metric row this week drop out.
func buildAdviceInput(ctx context.Context, d Deps, lg model.League, week int) (recommend.Input, error) {
	season := seasonFor(d, lg)

	players, err := d.Store.Players(ctx, lg.ID)
	if err != nil {
		return recommend.Input{}, fmt.Errorf("load players: %w", err)
	}
	byID := make(map[string]model.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	entries, err := d.Store.Rosters(ctx, lg.ID)
	if err != nil {
		return recommend.Input{}, fmt.Errorf("load rosters: %w", err)
	}
	rosteredAnywhere := make(map[string]bool, len(entries))
	for _, e := range entries {
		rosteredAnywhere[e.PlayerID] = true
	}

	metricRows, err := d.Store.MetricRows(ctx, lg.ID, season, week)
	if err != nil {
		return recommend.Input{}, fmt.Errorf("load metric rows: %w", err)
	}
	scores := make(map[string]float64, len(metricRows))
	for _, row := range metricRows {
		scores[row.SubjectID] = stats.WeightedScore(row.Normalized, d.Config.ScoreWeights, d.Config.DefaultScoreWeight)
	}

	in := recommend.Input{Week: week, RecentPoints: map[string][]float64{}}
	for _, e := range entries {
		if e.TeamKey != lg.TeamKey {
			continue
		}
		p, ok := byID[e.PlayerID]
		if !ok {
			continue
		}
		score, ok := scores[e.PlayerID]
		if !ok {
			continue
		}
		in.Roster = append(in.Roster, model.RosteredPlayer{Player: p, TeamKey: e.TeamKey, Slot: e.Slot, Score: score})
	}
	for _, p := range players {
		if rosteredAnywhere[p.ID] {
			continue
		}
		score, ok := scores[p.ID]
		if !ok {
			continue
		}
		in.Pool = append(in.Pool, model.CandidatePlayer{Player: p, Score: score})
	}

	window := d.Config.RollingWindowWeeks
	from := week - (window - 1)
	if from < 1 {
		from = 1
	}
	statRows, err := d.Store.WeekStats(ctx, lg.ID, season, from, week)
	if err != nil {
		return recommend.Input{}, fmt.Errorf("load recent stats: %w", err)
	}
	recent := make(map[string][]model.PlayerWeekStat)
	for _, row := range statRows {
		recent[row.PlayerID] = append(recent[row.PlayerID], row)
	}
	for id, rows := range recent {
		sort.Slice(rows, func(a, b int) bool { return rows[a].Week < rows[b].Week })
		pts := make([]float64, len(rows))
		for i, row := range rows {
			pts[i] = row.Points
		}
		in.RecentPoints[id] = pts
	}
	return in, nil
}
