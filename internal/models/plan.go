// internal/models/plan.go
package models

type Step struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Answer is one entry of a plan's context_data object. Plans keep answers as
// a slice so the stored key order survives decoding.
type Answer struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

type Plan struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Title       string   `json:"goal_title"`
	Category    string   `json:"goal_category"`
	Vision      string   `json:"vision"`
	Goal90Day   string   `json:"goal_90_day"`
	Steps       []Step   `json:"steps"`
	CurrentStep int      `json:"current_step"`
	ContextData []Answer `json:"context_data"`
	IsActive    bool     `json:"is_active"`
}

// ClampCurrentStep forces CurrentStep into [0, len(Steps)].
func (p *Plan) ClampCurrentStep() {
	if p.CurrentStep < 0 {
		p.CurrentStep = 0
	}
	if p.CurrentStep > len(p.Steps) {
		p.CurrentStep = len(p.Steps)
	}
}

// CompletedSteps counts steps marked completed.
func (p *Plan) CompletedSteps() int {
	n := 0
	for _, s := range p.Steps {
		if s.Completed {
			n++
		}
	}
	return n
}
