package stats

import (
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// NormMode selects the normalization primitive for a metric family. The
// provider's metric families do not share one rule, so each call site
// chooses.
type NormMode string

const (
	NormZScore NormMode = "zscore"
	NormMinMax NormMode = "minmax"
)

// SubjectSeries is the raw weekly history for one subject, as
// week -> metric key -> value.
type SubjectSeries struct {
	SubjectID string
	Weeks     map[int]map[string]float64
}

// Aggregate turns raw weekly series into one MetricRow per subject for the
// given week: a rolling average per counter plus a normalized value per
// counter relative to the same population.
//
// Each metric is normalized independently across the subjects that carry a
// rolling value for it; a missing raw value for one metric never blocks
// normalization of the others. Rolling values are rounded to 2 decimals,
// normalized values to 3.
func Aggregate(series []SubjectSeries, leagueID string, season, week int, metrics []string, mode NormMode, window int) []model.MetricRow {
	rows := make([]model.MetricRow, len(series))
	for i, s := range series {
		row := model.MetricRow{
			LeagueID:   leagueID,
			SubjectID:  s.SubjectID,
			Season:     season,
			Week:       week,
			Raw:        map[string]float64{},
			Rolling:    map[string]float64{},
			Normalized: map[string]*float64{},
		}
		for k, v := range s.Weeks[week] {
			row.Raw[k] = v
		}
		for _, key := range metrics {
			byWeek, ok := seriesForMetric(s, key, week)
			if !ok {
				continue
			}
			row.Rolling[key] = Round2(RollingAverage(byWeek, week, window))
		}
		rows[i] = row
	}

	for _, key := range metrics {
		normalizeMetric(rows, key, mode)
	}
	return rows
}

// seriesForMetric projects one metric out of a subject's weekly history.
// The bool is false when the subject has no value for the metric in the
// current week.
func seriesForMetric(s SubjectSeries, key string, week int) (map[int]float64, bool) {
	if _, ok := s.Weeks[week][key]; !ok {
		return nil, false
	}
	byWeek := make(map[int]float64, len(s.Weeks))
	for w, m := range s.Weeks {
		if v, ok := m[key]; ok {
			byWeek[w] = v
		}
	}
	return byWeek, true
}

// normalizeMetric rescales one metric across the rows that carry it,
// writing the result back into each row.
func normalizeMetric(rows []model.MetricRow, key string, mode NormMode) {
	idx := make([]int, 0, len(rows))
	vals := make([]float64, 0, len(rows))
	for i := range rows {
		if v, ok := rows[i].Rolling[key]; ok {
			idx = append(idx, i)
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return
	}

	switch mode {
	case NormMinMax:
		norm := MinMax(vals)
		for j, i := range idx {
			if norm[j] == nil {
				rows[i].Normalized[key] = nil
				continue
			}
			v := Round3(*norm[j])
			rows[i].Normalized[key] = &v
		}
	default:
		norm := ZScores(vals)
		for j, i := range idx {
			v := Round3(norm[j])
			rows[i].Normalized[key] = &v
		}
	}
}
