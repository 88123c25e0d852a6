package models

import "time"

// Role identifies who authored a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one committed message of the conversation. Turns are immutable once
// created. Unknown fields in persisted turns are ignored on load so older
// history files keep working.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

func NewTurn(role Role, content string) Turn {
	return Turn{Role: role, Content: content, Timestamp: time.Now()}
}

// GenerationStatus reflects whether a model response is in flight. Written
// only by the chat session coordinator, read by the renderer.
type GenerationStatus int

const (
	StatusIdle GenerationStatus = iota
	StatusStreaming
	StatusError
)

type MessageType int

const (
	User MessageType = iota
	Assistant
	System
	Program
)

// Message is what the transcript renders. Conversation turns map onto
// User/Assistant/System messages; Program messages are UI-only notices
// (startup info, "History cleared.") that are never persisted nor sent to
// the model. Pending marks the live, still-streaming assistant text.
type Message struct {
	Content string
	Type    MessageType
	Pending bool
}
