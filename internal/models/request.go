// internal/models/request.go
package models

import (
	"strings"

	"github.com/google/uuid"
)

// ChatContext selects the prompt template and the thread of a chat turn.
// The set of implementations is closed: GeneralContext and PlanContext.
type ChatContext interface {
	Kind() string
	isChatContext()
}

type GeneralContext struct{}

func (GeneralContext) Kind() string   { return "general" }
func (GeneralContext) isChatContext() {}

// PlanContext scopes a turn to one of the user's plans.
type PlanContext struct {
	PlanID string
}

func (PlanContext) Kind() string   { return "plan" }
func (PlanContext) isChatContext() {}

// ThreadFor returns the conversation thread a context writes to.
func ThreadFor(userID string, c ChatContext) Thread {
	if pc, ok := c.(PlanContext); ok {
		return PlanThread(pc.PlanID)
	}
	return GeneralThread(userID)
}

// ChatRequest is a validated inbound chat turn.
type ChatRequest struct {
	Message string
	Context ChatContext
}

// ParseChatRequest validates the wire fields of a chat turn.
func ParseChatRequest(message, contextType, planID string) (ChatRequest, error) {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return ChatRequest{}, InvalidRequest("message is empty")
	}

	switch strings.TrimSpace(contextType) {
	case "", "general":
		return ChatRequest{Message: msg, Context: GeneralContext{}}, nil
	case "plan":
		planID = strings.TrimSpace(planID)
		if planID == "" {
			return ChatRequest{}, InvalidRequest("plan_id is required for plan context")
		}
		id, err := uuid.Parse(planID)
		if err != nil {
			return ChatRequest{}, InvalidRequest("plan_id %q is not a valid id", planID)
		}
		return ChatRequest{Message: msg, Context: PlanContext{PlanID: id.String()}}, nil
	default:
		return ChatRequest{}, InvalidRequest("unknown context_type %q", contextType)
	}
}
