package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlan_ClampCurrentStep(t *testing.T) {
	steps := []Step{{Title: "a"}, {Title: "b"}}

	p := Plan{Steps: steps, CurrentStep: -3}
	p.ClampCurrentStep()
	assert.Equal(t, 0, p.CurrentStep)

	p = Plan{Steps: steps, CurrentStep: 9}
	p.ClampCurrentStep()
	assert.Equal(t, 2, p.CurrentStep)

	p = Plan{CurrentStep: 1}
	p.ClampCurrentStep()
	assert.Equal(t, 0, p.CurrentStep)
}

func TestPlan_CompletedSteps(t *testing.T) {
	p := Plan{Steps: []Step{{Completed: true}, {}, {Completed: true}}}
	assert.Equal(t, 2, p.CompletedSteps())
	assert.Equal(t, 0, (&Plan{}).CompletedSteps())
}

func TestOption(t *testing.T) {
	var none Option[int]
	assert.False(t, none.IsSome())
	assert.Equal(t, 7, none.OrElse(7))

	some := Some(3)
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	s := "x"
	assert.Equal(t, "x", FromPtr(&s).OrElse(""))
	assert.False(t, FromPtr[string](nil).IsSome())
}
