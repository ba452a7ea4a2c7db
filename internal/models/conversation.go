// internal/models/conversation.go
package models

import (
	"time"
)

// Role is the storage vocabulary for conversation turns.
type Role string

const (
	RoleUser       Role = "user"
	RoleFutureSelf Role = "future_self"
)

// ThreadScope separates the general per-user thread from per-plan threads.
type ThreadScope string

const (
	ThreadGeneral ThreadScope = "general"
	ThreadPlan    ThreadScope = "plan"
)

// Thread identifies one conversation log. ID is the user id for general
// threads and the plan id for plan threads.
type Thread struct {
	Scope ThreadScope
	ID    string
}

func GeneralThread(userID string) Thread {
	return Thread{Scope: ThreadGeneral, ID: userID}
}

func PlanThread(planID string) Thread {
	return Thread{Scope: ThreadPlan, ID: planID}
}

// Turn is an immutable conversation record.
type Turn struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageRole is the provider-facing role vocabulary.
type MessageRole string

const (
	MessageSystem    MessageRole = "system"
	MessageUser      MessageRole = "user"
	MessageAssistant MessageRole = "assistant"
)

// Message is one entry of a chat-completion request.
type Message struct {
	Role    MessageRole
	Content string
}
