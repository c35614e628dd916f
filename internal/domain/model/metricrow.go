package model

// MetricRow is one derived row per (league, subject, season, week).
//
// Raw holds the week's counters as fetched. Rolling holds the trailing-window
// average per counter, rounded to 2 decimals. Normalized holds the counter
// rescaled against the same league/week population, rounded to 3 decimals; a
// nil entry means the metric was not discriminative that week (zero min-max
// range).
type MetricRow struct {
	LeagueID  string
	SubjectID string
	Season    int
	Week      int

	Raw        map[string]float64
	Rolling    map[string]float64
	Normalized map[string]*float64
}
