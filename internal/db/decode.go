// internal/db/decode.go
package db

import (
	"fmt"

	"futureself/internal/models"

	"github.com/tidwall/gjson"
)

// unwrapJSON accepts a JSON document or a JSON string that itself holds a
// document. The onboarding client stores JSON.stringify output in some
// columns, so both shapes occur.
func unwrapJSON(raw []byte) (gjson.Result, error) {
	if len(raw) == 0 {
		return gjson.Result{}, nil
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("invalid json column value")
	}
	res := gjson.ParseBytes(raw)
	if res.Type == gjson.String {
		inner := res.String()
		if inner == "" {
			return gjson.Result{}, nil
		}
		if !gjson.Valid(inner) {
			return gjson.Result{}, fmt.Errorf("invalid json in string column value")
		}
		res = gjson.Parse(inner)
	}
	return res, nil
}

func decodeGoals(raw []byte) ([]string, error) {
	res, err := unwrapJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode goals: %w", err)
	}
	var goals []string
	for _, g := range res.Array() {
		goals = append(goals, g.String())
	}
	return goals, nil
}

func decodeSteps(raw []byte) ([]models.Step, error) {
	res, err := unwrapJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode steps: %w", err)
	}
	var steps []models.Step
	for _, s := range res.Array() {
		steps = append(steps, models.Step{
			Title:       s.Get("title").String(),
			Description: s.Get("description").String(),
			Completed:   s.Get("completed").Bool(),
		})
	}
	return steps, nil
}

// decodeContextData keeps the object's key order, which FormatContext relies on.
func decodeContextData(raw []byte) ([]models.Answer, error) {
	res, err := unwrapJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode context data: %w", err)
	}
	if !res.IsObject() {
		return nil, nil
	}
	var answers []models.Answer
	res.ForEach(func(key, value gjson.Result) bool {
		answers = append(answers, models.Answer{ID: key.String(), Value: value.String()})
		return true
	})
	return answers, nil
}
