// Package history turns stored conversation turns into the bounded message
// window sent to the provider.
package history

import (
	"futureself/internal/models"
)

const (
	// FetchLimit caps how many turns are read from storage per request.
	FetchLimit = 20
	// SendLimit caps how many of those turns are sent to the provider.
	SendLimit = 10
)

// Window returns the most recent min(limit, len) turns as provider messages,
// oldest first. turns must already be in ascending time order. Turns with a
// role outside the storage vocabulary are skipped before the limit applies.
func Window(turns []models.Turn, limit int) []models.Message {
	msgs := make([]models.Message, 0, min(len(turns), max(limit, 0)))
	if limit <= 0 {
		return msgs
	}

	mapped := make([]models.Message, 0, len(turns))
	for _, t := range turns {
		role, ok := providerRole(t.Role)
		if !ok {
			continue
		}
		mapped = append(mapped, models.Message{Role: role, Content: t.Message})
	}

	if len(mapped) > limit {
		mapped = mapped[len(mapped)-limit:]
	}
	return append(msgs, mapped...)
}

func providerRole(r models.Role) (models.MessageRole, bool) {
	switch r {
	case models.RoleUser:
		return models.MessageUser, true
	case models.RoleFutureSelf:
		return models.MessageAssistant, true
	default:
		return "", false
	}
}
