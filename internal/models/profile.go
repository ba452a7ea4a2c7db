// internal/models/profile.go
package models

import (
	"time"
)

// UserProfile is the identity record owned by the auth/storage service.
type UserProfile struct {
	ID        string         `json:"id"`
	FirstName string         `json:"first_name"`
	Age       Option[int]    `json:"-"`
	Gender    Option[string] `json:"-"`
	Location  Option[string] `json:"-"`
}

// CalibrationRecord is the onboarding snapshot, one per user.
type CalibrationRecord struct {
	UserID           string            `json:"user_id"`
	Goals            []string          `json:"goals"`
	GoalsImportance  string            `json:"goals_importance"`
	DesiredChanges   string            `json:"desired_changes"`
	MotivationNow    string            `json:"motivation_now"`
	Stakes           string            `json:"stakes"`
	CurrentSituation string            `json:"current_situation"`
	CompletedAt      Option[time.Time] `json:"-"`
}
