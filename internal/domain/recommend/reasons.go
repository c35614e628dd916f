package recommend

import (
	"fmt"

	"github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/model"
)

// Position-specific templates for add reasons. The %s slots are candidate
// name, delta text, and rostered name. Reason text is deterministic: the
// same inputs always produce the same string.
var addTemplates = map[model.Position]string{
	model.Quarterback:  "%s projects %s over %s at QB off recent passing output",
	model.RunningBack:  "%s projects %s over %s at RB on volume and matchup",
	model.WideReceiver: "%s projects %s over %s at WR on target share and matchup",
	model.TightEnd:     "%s projects %s over %s at TE on usage",
	model.Kicker:       "%s projects %s over %s at K on accuracy and opportunity",
	model.Defense:      "%s projects %s over %s at DEF on points allowed and takeaways",
}

const addTemplateDefault = "%s projects %s over %s"

func addReason(rostered model.RosteredPlayer, cand model.CandidatePlayer, delta, pct float64, inconsistentRostered bool) string {
	tmpl, ok := addTemplates[rostered.Position]
	if !ok {
		tmpl = addTemplateDefault
	}
	deltaText := fmt.Sprintf("+%.1f pts (%.0f%% better)", delta, pct)
	reason := fmt.Sprintf(tmpl, cand.Name, deltaText, rostered.Name)
	if rostered.BenchSlot() {
		reason += "; " + rostered.Name + " is already on your bench"
	}
	if inconsistentRostered {
		reason += "; " + rostered.Name + " has been inconsistent week to week"
	}
	return reason
}

func startBenchReason(rostered, baseline model.RosteredPlayer, verdict model.Verdict, conf model.Confidence) string {
	if verdict == model.VerdictStart {
		return fmt.Sprintf("start %s over %s (%.1f vs %.1f, %s confidence)",
			rostered.Name, baseline.Name, rostered.Score, baseline.Score, conf)
	}
	return fmt.Sprintf("bench %s for %s (%.1f vs %.1f, %s confidence)",
		rostered.Name, baseline.Name, rostered.Score, baseline.Score, conf)
}
