package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EmailSentEvent struct {
	EmailID  uuid.UUID `json:"email_id"`
	To       []string  `json:"to"`
	Subject  string    `json:"subject"`
	Template string    `json:"template,omitempty"`
	SentAt   time.Time `json:"sent_at"`
}

type EmailFailedEvent struct {
	EmailID  uuid.UUID `json:"email_id"`
	To       []string  `json:"to"`
	Reason   string    `json:"reason"`
	Retries  int       `json:"retries"`
	FailedAt time.Time `json:"failed_at"`
}

// EventBus — публикация событий доставки (nil отключает публикацию).
type EventBus interface {
	PublishEmailSent(ctx context.Context, key string, event any) error
	PublishEmailFailed(ctx context.Context, key string, event any) error
}
