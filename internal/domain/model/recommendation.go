package model

// Confidence is the 3-tier certainty attached to a start/bench verdict.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Verdict is a start-or-bench call for a rostered player.
type Verdict string

const (
	VerdictStart Verdict = "start"
	VerdictBench Verdict = "bench"
)

// StartBench is the lineup verdict for one rostered player.
type StartBench struct {
	PlayerID   string     `json:"player_id"`
	Verdict    Verdict    `json:"verdict"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
}

// AddUpgrade pairs one rostered player with one higher-scoring available
// candidate at the same position.
type AddUpgrade struct {
	RosteredID     string   `json:"rostered_id"`
	RosteredName   string   `json:"rostered_name"`
	CandidateID    string   `json:"candidate_id"`
	CandidateName  string   `json:"candidate_name"`
	Position       Position `json:"position"`
	RosteredScore  float64  `json:"rostered_score"`
	CandidateScore float64  `json:"candidate_score"`
	Delta          float64  `json:"delta"`
	PctImprovement float64  `json:"pct_improvement"`
	Reason         string   `json:"reason"`
}

// PlayerAdvice is the per-rostered-player slice of the recommendation read
// model.
type PlayerAdvice struct {
	StartBench  *StartBench  `json:"start_bench,omitempty"`
	AddUpgrades []AddUpgrade `json:"add_upgrades,omitempty"`
}

// Advice is the recommendation read model, keyed by rostered player id.
// It is derived, recomputed from current metric rows on each request or
// refresh job, and never treated as a source of truth.
type Advice map[string]PlayerAdvice
