// internal/prompt/compiler.go
package prompt

import (
	"fmt"
	"strings"

	"futureself/internal/models"
)

const (
	defaultName       = "friend"
	notSpecified      = "Not specified"
	justStarting      = "Just starting"
	noPlanContext     = "No additional context provided yet."
	maxReplySentences = 3
)

// Scope is the input of Compile. Implementations are GeneralScope and
// PlanScope; Compile rejects anything else.
type Scope interface {
	isScope()
}

// GeneralScope compiles the open-ended future-self prompt.
type GeneralScope struct {
	Profile     models.Option[models.UserProfile]
	Calibration models.Option[models.CalibrationRecord]
}

// PlanScope compiles the prompt for a conversation about one plan.
// Context is the FormatContext output for the plan's answers.
type PlanScope struct {
	Profile     models.Option[models.UserProfile]
	Calibration models.Option[models.CalibrationRecord]
	Plan        models.Plan
	Context     string
}

func (GeneralScope) isScope() {}
func (PlanScope) isScope()    {}

// Compile builds the system prompt for scope. Output depends only on the
// input.
func Compile(scope Scope) (string, error) {
	switch s := scope.(type) {
	case GeneralScope:
		return compileGeneral(s), nil
	case PlanScope:
		return compilePlan(s), nil
	case nil:
		return "", fmt.Errorf("compile prompt: nil scope")
	default:
		return "", fmt.Errorf("compile prompt: unsupported scope %T", scope)
	}
}

func compileGeneral(s GeneralScope) string {
	name := displayName(s.Profile)
	var b strings.Builder

	fmt.Fprintf(&b, "You are Future %s, the version of %s who has already achieved their goals and is living their best life. "+
		"You speak from experience, with wisdom, empathy, and a deep understanding of their journey.\n\n", name, name)

	writeKnowledge(&b, name, s.Calibration)
	writeDemographics(&b, name, s.Profile)

	b.WriteString("Your role:\n")
	writeRules(&b, []string{
		"Help them build momentum through these initial conversations",
		"Show that you truly understand them and their aspirations",
		"Provide motivation, perspective, and practical wisdom",
		fmt.Sprintf("Keep responses conversational, warm, and under %d sentences", maxReplySentences),
		`Speak as "I" (Future You) sharing what you learned, not lecturing`,
		"Be authentic, direct, and encouraging",
		"Never sound like a generic life coach or a self-help book",
	})

	b.WriteString("\nYou've walked this path. You know their doubts, fears, and potential. Guide them with compassion and confidence.")
	return b.String()
}

func compilePlan(s PlanScope) string {
	name := displayName(s.Profile)
	plan := s.Plan
	progress := Progress(plan)
	category := orDefault(plan.Category, notSpecified)
	if cat, ok := LookupCategory(plan.Category); ok {
		category = cat.Label
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are Future %s, the version of %s who has already achieved their goal: \"%s\". "+
		"You speak from experience, with wisdom and empathy. You remember exactly what it was like to be where they are now.\n\n",
		name, name, orDefault(plan.Title, notSpecified))

	fmt.Fprintf(&b, "Their Vision: %s\n", orDefault(plan.Vision, notSpecified))
	fmt.Fprintf(&b, "90-Day Goal: %s\n", orDefault(plan.Goal90Day, notSpecified))
	fmt.Fprintf(&b, "Category: %s\n\n", category)

	b.WriteString("Current Progress:\n")
	switch {
	case progress.Total == 0:
		b.WriteString("- No steps planned yet\n")
		fmt.Fprintf(&b, "- Current step: \"%s\"\n", progress.CurrentLabel)
	case progress.Finished:
		b.WriteString("- All steps completed\n")
	default:
		fmt.Fprintf(&b, "- On step %d of %d\n", progress.StepNumber, progress.Total)
		fmt.Fprintf(&b, "- Current step: \"%s\"\n", progress.CurrentLabel)
	}
	fmt.Fprintf(&b, "- Completed %d/%d steps so far\n", progress.Completed, progress.Total)
	fmt.Fprintf(&b, "- Progress: %d%%\n\n", progress.Percent)

	b.WriteString("What they've told you about their situation:\n")
	b.WriteString(orDefault(s.Context, noPlanContext))
	b.WriteString("\n\n")

	writeKnowledge(&b, name, s.Calibration)
	writeDemographics(&b, name, s.Profile)

	b.WriteString("Your role:\n")
	writeRules(&b, []string{
		"Help them stay motivated and accountable",
		"Reference their specific progress and current step",
		"Provide practical, actionable advice",
		"Remind them of their vision when they doubt",
		"Celebrate wins and normalize setbacks",
		fmt.Sprintf("Keep responses conversational, warm, and under %d sentences", maxReplySentences),
		`Speak as "I" (Future You) not "you should"`,
		"Never sound like a generic life coach or a self-help book",
	})

	b.WriteString("\nBe direct, honest, and supportive. You've been there. You know what works.")
	return b.String()
}

func writeKnowledge(b *strings.Builder, name string, cal models.Option[models.CalibrationRecord]) {
	c, _ := cal.Get()

	fmt.Fprintf(b, "What you know about %s:\n", name)
	fmt.Fprintf(b, "- Goals: %s\n", orDefault(joinGoals(c.Goals), notSpecified))
	fmt.Fprintf(b, "- Why these goals matter: %s\n", orDefault(c.GoalsImportance, notSpecified))
	fmt.Fprintf(b, "- Desired changes: %s\n", orDefault(c.DesiredChanges, notSpecified))
	fmt.Fprintf(b, "- Why now: %s\n", orDefault(c.MotivationNow, notSpecified))
	fmt.Fprintf(b, "- What's at stake: %s\n", orDefault(c.Stakes, notSpecified))
	fmt.Fprintf(b, "- Current situation: %s\n\n", orDefault(c.CurrentSituation, justStarting))
}

// writeDemographics writes one line per present field and nothing at all
// when the profile carries none.
func writeDemographics(b *strings.Builder, name string, profile models.Option[models.UserProfile]) {
	p, ok := profile.Get()
	if !ok {
		return
	}

	var lines []string
	if age, ok := p.Age.Get(); ok && age > 0 {
		lines = append(lines, fmt.Sprintf("- Age: %d", age))
	}
	if gender, ok := p.Gender.Get(); ok && strings.TrimSpace(gender) != "" {
		lines = append(lines, "- Gender: "+strings.TrimSpace(gender))
	}
	if loc, ok := p.Location.Get(); ok && strings.TrimSpace(loc) != "" {
		lines = append(lines, "- Location: "+strings.TrimSpace(loc))
	}
	if len(lines) == 0 {
		return
	}

	fmt.Fprintf(b, "About %s:\n", name)
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\n")
}

func writeRules(b *strings.Builder, rules []string) {
	for i, r := range rules {
		fmt.Fprintf(b, "%d. %s\n", i+1, r)
	}
}

func displayName(profile models.Option[models.UserProfile]) string {
	p, ok := profile.Get()
	if !ok {
		return defaultName
	}
	return orDefault(p.FirstName, defaultName)
}

func joinGoals(goals []string) string {
	kept := make([]string, 0, len(goals))
	for _, g := range goals {
		if g = strings.TrimSpace(g); g != "" {
			kept = append(kept, g)
		}
	}
	return strings.Join(kept, ", ")
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
