package domain

import "time"

type Role string

const (
	RoleUser       Role = "user"
	RoleAssistant  Role = "assistant"
	RoleFileNotice Role = "file-notice"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleFileNotice:
		return true
	default:
		return false
	}
}

// Message is one recorded turn. Messages are append-only: once written to
// the conversation log they are never edited or removed, and their ID
// ordering is the sole source of truth for chat history.
type Message struct {
	ID        int64     `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Exchange is the result of one completed send cycle: the recorded user
// turn and the assistant turn that answered it. GenerationFailed marks an
// assistant turn that carries the error notice instead of a model reply.
type Exchange struct {
	User             Message `json:"user"`
	Assistant        Message `json:"assistant"`
	GenerationFailed bool    `json:"generation_failed,omitempty"`
}

type InteractionState string

const (
	StateIdle             InteractionState = "idle"
	StateAwaitingResponse InteractionState = "awaiting-response"
)
