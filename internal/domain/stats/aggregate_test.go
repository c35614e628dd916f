package stats_test

import (
	"testing"

	stats "github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
)

func defenseSeries() []stats.SubjectSeries {
	return []stats.SubjectSeries{
		{
			SubjectID: "def-1",
			Weeks: map[int]map[string]float64{
				1: {"points_allowed": 10, "sacks": 2},
				2: {"points_allowed": 20, "sacks": 4},
				3: {"points_allowed": 30, "sacks": 6},
			},
		},
		{
			SubjectID: "def-2",
			Weeks: map[int]map[string]float64{
				1: {"points_allowed": 30},
				2: {"points_allowed": 20},
				3: {"points_allowed": 10, "sacks": 3},
			},
		},
	}
}

func TestAggregateRollingValues(t *testing.T) {
	rows := stats.Aggregate(defenseSeries(), "lg-1", 2025, 3, []string{"points_allowed", "sacks"}, stats.NormZScore, 3)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if got := rows[0].Rolling["points_allowed"]; got != 20 {
		t.Errorf("def-1 rolling points_allowed: want 20, got %v", got)
	}
	if got := rows[1].Rolling["points_allowed"]; got != 20 {
		t.Errorf("def-2 rolling points_allowed: want 20, got %v", got)
	}
	// def-2 has sacks only in week 3, so its rolling value is the single week.
	if got := rows[1].Rolling["sacks"]; got != 3 {
		t.Errorf("def-2 rolling sacks: want 3, got %v", got)
	}
}

func TestAggregateNormalizesMetricsIndependently(t *testing.T) {
	rows := stats.Aggregate(defenseSeries(), "lg-1", 2025, 3, []string{"points_allowed", "sacks"}, stats.NormZScore, 3)

	// Equal rolling points_allowed across the population: zero std, so both
	// normalize to 0 rather than blocking on the sacks metric.
	for _, row := range rows {
		v := row.Normalized["points_allowed"]
		if v == nil || *v != 0 {
			t.Errorf("%s normalized points_allowed: want 0, got %v", row.SubjectID, v)
		}
	}
	// Both subjects carry a sacks rolling value in week 3, so the metric
	// normalizes over both.
	if rows[0].Normalized["sacks"] == nil || rows[1].Normalized["sacks"] == nil {
		t.Error("sacks should normalize for both subjects")
	}
}

func TestAggregateMinMaxZeroRange(t *testing.T) {
	series := []stats.SubjectSeries{
		{SubjectID: "k-1", Weeks: map[int]map[string]float64{1: {"fg_made": 2}}},
		{SubjectID: "k-2", Weeks: map[int]map[string]float64{1: {"fg_made": 2}}},
	}
	rows := stats.Aggregate(series, "lg-1", 2025, 1, []string{"fg_made"}, stats.NormMinMax, 3)

	for _, row := range rows {
		v, present := row.Normalized["fg_made"]
		if !present {
			t.Errorf("%s: expected an explicit entry for fg_made", row.SubjectID)
			continue
		}
		if v != nil {
			t.Errorf("%s: zero-range min-max should be nil, got %v", row.SubjectID, *v)
		}
	}
}

func TestAggregateWeekOneDegeneratesToRaw(t *testing.T) {
	series := []stats.SubjectSeries{
		{SubjectID: "def-1", Weeks: map[int]map[string]float64{1: {"points_allowed": 17}}},
		{SubjectID: "def-2", Weeks: map[int]map[string]float64{1: {"points_allowed": 24}}},
	}
	rows := stats.Aggregate(series, "lg-1", 2025, 1, []string{"points_allowed"}, stats.NormZScore, 3)

	if got := rows[0].Rolling["points_allowed"]; got != 17 {
		t.Errorf("week 1 rolling should equal raw: want 17, got %v", got)
	}
	if got := rows[1].Rolling["points_allowed"]; got != 24 {
		t.Errorf("week 1 rolling should equal raw: want 24, got %v", got)
	}
}
