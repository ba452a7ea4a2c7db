// internal/prompt/progress.go
package prompt

import (
	"math"

	"futureself/internal/models"
)

const defaultStepLabel = "Getting started"

// ProgressSummary holds the derived plan figures embedded in plan prompts.
type ProgressSummary struct {
	Completed    int
	Total        int
	Percent      int
	StepNumber   int // 1-based position of the current step, 0 when there are no steps
	CurrentLabel string
	Finished     bool // the current step index is past the last step
}

// Progress derives the plan figures. It never divides by zero: a plan without
// steps reports 0%.
func Progress(plan models.Plan) ProgressSummary {
	total := len(plan.Steps)
	completed := min(plan.CompletedSteps(), total)

	s := ProgressSummary{
		Completed:    completed,
		Total:        total,
		Percent:      int(math.Round(100 * float64(completed) / float64(max(1, total)))),
		CurrentLabel: defaultStepLabel,
	}

	cur := plan.CurrentStep
	if cur >= 0 && cur < total {
		if title := plan.Steps[cur].Title; title != "" {
			s.CurrentLabel = title
		}
	}
	if total > 0 {
		s.Finished = cur >= total
		s.StepNumber = min(max(cur, 0)+1, total)
	}
	return s
}
