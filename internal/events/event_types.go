package events

import (
	"time"

	"github.com/spec-kit/link-shortener/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
	EventURLCreated     EventType = "url_created"
	EventURLDeleted     EventType = "url_deleted"
)

// Source names the channel an event originated from.
type Source string

const (
	SourceHTTP Source = "http"
	SourceBot  Source = "telegram_bot"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Source    Source      `json:"source"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// URLCreatedPayload payload.
type URLCreatedPayload struct {
	URLID     string `json:"url_id"`
	Alias     string `json:"alias"`
	CreatedBy string `json:"created_by"`
}

// URLDeletedPayload payload.
type URLDeletedPayload struct {
	URLID     string `json:"url_id"`
	Alias     string `json:"alias"`
	DeletedBy string `json:"deleted_by"`
}
