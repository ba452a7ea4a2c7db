package prompt

import (
	"strings"
	"testing"

	"futureself/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourStepPlan() models.Plan {
	return models.Plan{
		ID:          "plan-1",
		UserID:      "user-1",
		Title:       "Run a half marathon",
		Category:    "fitness",
		Vision:      "Strong, light and proud of my body",
		Goal90Day:   "Run 10km without stopping",
		CurrentStep: 2,
		Steps: []models.Step{
			{Title: "Buy shoes", Completed: true},
			{Title: "Walk daily", Completed: true},
			{Title: "Couch to 5k"},
			{Title: "First 10k"},
		},
		ContextData: []models.Answer{{ID: "current_fitness_level", Value: "I can walk 30 minutes"}},
	}
}

func TestCompile_GeneralWithoutCalibrationUsesDefaults(t *testing.T) {
	got, err := Compile(GeneralScope{})
	require.NoError(t, err)

	assert.NotEmpty(t, got)
	assert.Contains(t, got, "You are Future friend")
	assert.Contains(t, got, "- Goals: Not specified")
	assert.Contains(t, got, "- Why these goals matter: Not specified")
	assert.Contains(t, got, "- Desired changes: Not specified")
	assert.Contains(t, got, "- Current situation: Just starting")
	assert.NotContains(t, got, "About friend:")
	assert.Contains(t, got, "under 3 sentences")
}

func TestCompile_GeneralWithCalibration(t *testing.T) {
	scope := GeneralScope{
		Profile: models.Some(models.UserProfile{ID: "u1", FirstName: "Maya"}),
		Calibration: models.Some(models.CalibrationRecord{
			Goals:            []string{"Get fit", " ", "Change careers"},
			GoalsImportance:  "I want energy for my kids",
			DesiredChanges:   "Less stress",
			MotivationNow:    "Turned 40",
			Stakes:           "My health",
			CurrentSituation: "Desk job, no exercise",
		}),
	}

	got, err := Compile(scope)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "You are Future Maya, the version of Maya"))
	assert.Contains(t, got, "What you know about Maya:")
	assert.Contains(t, got, "- Goals: Get fit, Change careers")
	assert.Contains(t, got, "- Why these goals matter: I want energy for my kids")
	assert.Contains(t, got, "- Why now: Turned 40")
	assert.Contains(t, got, "- What's at stake: My health")
	assert.Contains(t, got, "- Current situation: Desk job, no exercise")
}

func TestCompile_DemographicsOnlyPresentFields(t *testing.T) {
	scope := GeneralScope{
		Profile: models.Some(models.UserProfile{
			FirstName: "Sam",
			Age:       models.Some(34),
			Location:  models.Some("Lisbon"),
		}),
	}

	got, err := Compile(scope)
	require.NoError(t, err)

	assert.Contains(t, got, "About Sam:\n- Age: 34\n- Location: Lisbon\n")
	assert.NotContains(t, got, "Gender")
}

func TestCompile_PlanProgress(t *testing.T) {
	plan := fourStepPlan()
	got, err := Compile(PlanScope{
		Profile: models.Some(models.UserProfile{FirstName: "Ana"}),
		Plan:    plan,
		Context: FormatContext(plan.ContextData),
	})
	require.NoError(t, err)

	assert.Contains(t, got, `already achieved their goal: "Run a half marathon"`)
	assert.Contains(t, got, "Category: Health & Fitness")
	assert.Contains(t, got, "- On step 3 of 4")
	assert.Contains(t, got, `- Current step: "Couch to 5k"`)
	assert.Contains(t, got, "- Completed 2/4 steps so far")
	assert.Contains(t, got, "- Progress: 50%")
	assert.Contains(t, got, "Current Fitness Level: I can walk 30 minutes")
	assert.Contains(t, got, "What you know about Ana:")
}

func TestCompile_PlanWithoutStepsOrContext(t *testing.T) {
	got, err := Compile(PlanScope{Plan: models.Plan{Title: "Learn Spanish", Category: "skills"}})
	require.NoError(t, err)

	assert.Contains(t, got, "- No steps planned yet")
	assert.Contains(t, got, `- Current step: "Getting started"`)
	assert.Contains(t, got, "- Completed 0/0 steps so far")
	assert.Contains(t, got, "- Progress: 0%")
	assert.Contains(t, got, "No additional context provided yet.")
	assert.Contains(t, got, "Category: Learning & Skills")
}

func TestCompile_PlanCategory(t *testing.T) {
	tests := []struct {
		category string
		want     string
	}{
		{"fitness", "Category: Health & Fitness"},
		{"Spirituality", "Category: Spirituality"},
		{"  ", "Category: Not specified"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			got, err := Compile(PlanScope{Plan: models.Plan{Title: "Meditate", Category: tt.category}})
			require.NoError(t, err)
			assert.Contains(t, got, tt.want)
			assert.NotContains(t, got, "Personal Development")
		})
	}
}

func TestCompile_PlanAllStepsCompleted(t *testing.T) {
	plan := models.Plan{
		Title:       "Save an emergency fund",
		Steps:       []models.Step{{Title: "Budget", Completed: true}, {Title: "Automate", Completed: true}},
		CurrentStep: 2,
	}
	got, err := Compile(PlanScope{Plan: plan})
	require.NoError(t, err)

	assert.Contains(t, got, "- All steps completed")
	assert.Contains(t, got, "- Completed 2/2 steps so far")
	assert.Contains(t, got, "- Progress: 100%")
	assert.NotContains(t, got, "- On step")
	assert.NotContains(t, got, "- Current step:")
}

func TestCompile_Deterministic(t *testing.T) {
	scope := PlanScope{Plan: fourStepPlan(), Context: "Why Now: because"}
	first, err := Compile(scope)
	require.NoError(t, err)
	second, err := Compile(scope)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompile_RejectsUnknownScope(t *testing.T) {
	_, err := Compile(nil)
	require.Error(t, err)

	_, err = Compile(&GeneralScope{})
	require.Error(t, err)
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		plan models.Plan
		want ProgressSummary
	}{
		{
			name: "no steps",
			plan: models.Plan{CurrentStep: 0},
			want: ProgressSummary{Percent: 0, CurrentLabel: "Getting started"},
		},
		{
			name: "half done",
			plan: fourStepPlan(),
			want: ProgressSummary{Completed: 2, Total: 4, Percent: 50, StepNumber: 3, CurrentLabel: "Couch to 5k"},
		},
		{
			name: "rounds",
			plan: models.Plan{Steps: []models.Step{{Completed: true}, {Title: "b"}, {Title: "c"}}, CurrentStep: 1},
			want: ProgressSummary{Completed: 1, Total: 3, Percent: 33, StepNumber: 2, CurrentLabel: "b"},
		},
		{
			name: "all complete, index past end",
			plan: models.Plan{Steps: []models.Step{{Title: "a", Completed: true}, {Title: "b", Completed: true}}, CurrentStep: 2},
			want: ProgressSummary{Completed: 2, Total: 2, Percent: 100, StepNumber: 2, CurrentLabel: "Getting started", Finished: true},
		},
		{
			name: "negative index",
			plan: models.Plan{Steps: []models.Step{{Title: "a"}}, CurrentStep: -1},
			want: ProgressSummary{Total: 1, StepNumber: 1, CurrentLabel: "Getting started"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Progress(tt.plan)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got.Completed, got.Total)
		})
	}
}
