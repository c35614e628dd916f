// Package recommend builds start/bench verdicts and waiver-wire upgrade
// suggestions from current-week metric rows.
package recommend

import (
	"context"
	"sort"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/logger"
	"github.com/camr1993/fantasy-football-assistant-sub000/pkg/metrics"
)

// Recent score history threshold above which a player is flagged
// inconsistent: std / max(mean, 0.1) > varianceRatio.
const varianceRatio = 0.5

// Confidence tiers for start/bench verdicts, as score-gap ratios against
// the baseline.
const (
	confidenceHighRatio   = 0.25
	confidenceMediumRatio = 0.10
)

// Input carries everything the engine needs for one user's advice.
type Input struct {
	Week   int
	Roster []model.RosteredPlayer

	// Pool holds non-rostered players only; the caller removes players
	// rostered by anyone in the league. The engine applies the injury and
	// bye filters.
	Pool []model.CandidatePlayer

	// RecentPoints maps player id to the trailing weeks' fantasy points,
	// used for the variance flag. Missing histories skip the flag.
	RecentPoints map[string][]float64
}

// Engine compares rostered players against replacement candidates.
type Engine struct {
	logger logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Build produces the advice read model for one roster. Players with no
// metrics simply drop out of the result; the engine never errors on
// missing data.
func (e *Engine) Build(ctx context.Context, in Input) model.Advice {
	eligible := e.filterPool(in)
	byPosition := make(map[model.Position][]model.CandidatePlayer)
	for _, c := range eligible {
		byPosition[c.Position] = append(byPosition[c.Position], c)
	}

	upgrades := e.addUpgrades(in, byPosition)

	advice := make(model.Advice, len(in.Roster))
	for _, up := range upgrades {
		a := advice[up.RosteredID]
		a.AddUpgrades = append(a.AddUpgrades, up)
		advice[up.RosteredID] = a
	}
	for _, rostered := range in.Roster {
		if sb := e.startBench(in, rostered); sb != nil {
			a := advice[rostered.ID]
			a.StartBench = sb
			advice[rostered.ID] = a
		}
	}

	if e.logger != nil {
		e.logger.Debug(ctx, "advice built",
			logger.Int("roster", len(in.Roster)),
			logger.Int("eligible", len(eligible)),
			logger.Int("upgrades", len(upgrades)),
		)
	}
	return advice
}

// filterPool drops unavailable players and players on a bye in the next
// week.
func (e *Engine) filterPool(in Input) []model.CandidatePlayer {
	out := make([]model.CandidatePlayer, 0, len(in.Pool))
	for _, c := range in.Pool {
		if c.Unavailable() {
			continue
		}
		if c.OnByeNext(in.Week) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// addUpgrades emits one Add per (rostered, candidate) pair at the same
// position where the candidate's score strictly exceeds the rostered
// player's, never capping to a single best match. The full set sorts by
// score delta descending.
func (e *Engine) addUpgrades(in Input, byPosition map[model.Position][]model.CandidatePlayer) []model.AddUpgrade {
	var out []model.AddUpgrade
	for _, rostered := range in.Roster {
		for _, cand := range byPosition[rostered.Position] {
			if cand.Score <= rostered.Score {
				continue
			}
			delta := stats.Round3(cand.Score - rostered.Score)
			pct := pctImprovement(rostered.Score, cand.Score)
			out = append(out, model.AddUpgrade{
				RosteredID:     rostered.ID,
				RosteredName:   rostered.Name,
				CandidateID:    cand.ID,
				CandidateName:  cand.Name,
				Position:       rostered.Position,
				RosteredScore:  rostered.Score,
				CandidateScore: cand.Score,
				Delta:          delta,
				PctImprovement: pct,
				Reason:         addReason(rostered, cand, delta, pct, e.inconsistent(in, rostered.ID)),
			})
			metrics.RecordRecommendationBuilt()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Delta > out[j].Delta
	})
	return out
}

// startBench compares a rostered player against the best alternative at
// the same position on the same roster. Returns nil when the player has
// no alternative to compare against.
func (e *Engine) startBench(in Input, rostered model.RosteredPlayer) *model.StartBench {
	var (
		baseline model.RosteredPlayer
		found    bool
	)
	for _, other := range in.Roster {
		if other.ID == rostered.ID || other.Position != rostered.Position {
			continue
		}
		if !found || other.Score > baseline.Score {
			baseline = other
			found = true
		}
	}
	if !found {
		return nil
	}

	verdict := model.VerdictStart
	if rostered.Score < baseline.Score {
		verdict = model.VerdictBench
	}
	conf := confidence(rostered.Score, baseline.Score)
	sb := &model.StartBench{
		PlayerID:   rostered.ID,
		Verdict:    verdict,
		Confidence: conf,
		Reason:     startBenchReason(rostered, baseline, verdict, conf),
	}
	metrics.RecordRecommendationBuilt()
	return sb
}

// inconsistent derives the variance flag from the recent mean/std.
func (e *Engine) inconsistent(in Input, playerID string) bool {
	recent := in.RecentPoints[playerID]
	if len(recent) < 2 {
		return false
	}
	mean := stats.Mean(recent)
	if mean < 0.1 {
		mean = 0.1
	}
	return stats.StdDev(recent)/mean > varianceRatio
}

// confidence maps the score gap ratio onto three tiers.
func confidence(score, baseline float64) model.Confidence {
	ref := baseline
	if ref < 0.1 {
		ref = 0.1
	}
	gap := score - baseline
	if gap < 0 {
		gap = -gap
	}
	ratio := gap / ref
	switch {
	case ratio > confidenceHighRatio:
		return model.ConfidenceHigh
	case ratio > confidenceMediumRatio:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// pctImprovement returns the candidate's improvement over the rostered
// score as a percentage, guarded against tiny baselines.
func pctImprovement(rostered, candidate float64) float64 {
	ref := rostered
	if ref < 0.1 {
		ref = 0.1
	}
	return stats.Round2((candidate - rostered) / ref * 100)
}
