// Package stats computes rolling windows and population-normalized metrics.
package stats

import "math"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs.
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// RollingAverage averages the metric over the trailing window ending at
// week. Week 1 degenerates to the raw value; for week >= 2 the inclusive
// window is max(1, week-(window-1))..week, shrinking near the season start
// rather than padding with zeros. Weeks missing from byWeek are skipped.
func RollingAverage(byWeek map[int]float64, week, window int) float64 {
	if week <= 1 {
		return byWeek[week]
	}
	start := week - (window - 1)
	if start < 1 {
		start = 1
	}
	var (
		sum float64
		n   int
	)
	for w := start; w <= week; w++ {
		if v, ok := byWeek[w]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// ZScores rescales each value as (x - mean) / std over the whole
// population, the subject included. A zero std yields 0 for every value,
// never infinity or NaN.
func ZScores(xs []float64) []float64 {
	out := make([]float64, len(xs))
	std := StdDev(xs)
	if std == 0 {
		return out
	}
	m := Mean(xs)
	for i, x := range xs {
		out[i] = (x - m) / std
	}
	return out
}

// MinMax rescales each value as (x - min) / (max - min) over the
// population. A zero range yields nil for every value: the metric is not
// discriminative that week.
func MinMax(xs []float64) []*float64 {
	out := make([]*float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if hi == lo {
		return out
	}
	for i, x := range xs {
		v := (x - lo) / (hi - lo)
		out[i] = &v
	}
	return out
}

// Round2 rounds to 2 decimal places, the storage precision for rolling
// averages.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Round3 rounds to 3 decimal places, the storage precision for normalized
// values.
func Round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

// WeightedScore folds normalized metric values into a composite score using
// per-metric weights. Nil normalized entries are skipped; metrics absent
// from weights use defaultWeight.
func WeightedScore(normalized map[string]*float64, weights map[string]float64, defaultWeight float64) float64 {
	var score float64
	for key, v := range normalized {
		if v == nil {
			continue
		}
		w, ok := weights[key]
		if !ok {
			w = defaultWeight
		}
		score += w * *v
	}
	return Round3(score)
}
