package service

import (
	"context"
	"time"

	"mail-service/internal/models"
	"mail-service/internal/repository"
	"mail-service/internal/sender"

	"github.com/google/uuid"
)

type EmailRepo interface {
	Create(ctx context.Context, e *models.Email) error
	CreateBatch(ctx context.Context, emails []*models.Email) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Email, error)
	List(ctx context.Context, f repository.EmailFilter) ([]models.Email, error)
	DequeueDue(ctx context.Context, now time.Time, limit int) ([]models.Email, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkQueuedForRetry(ctx context.Context, id uuid.UUID, retries int, nextAttempt time.Time) error
	Requeue(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type TemplateRepo interface {
	Create(ctx context.Context, t *models.EmailTemplate) error
	Update(ctx context.Context, t *models.EmailTemplate) error
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.EmailTemplate, error)
	GetByName(ctx context.Context, name, language string) (*models.EmailTemplate, error)
	List(ctx context.Context) ([]models.EmailTemplate, error)
}

type LogRepo interface {
	Create(ctx context.Context, l *models.Log) error
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Log, error)
}

type AttachmentRepo interface {
	Create(ctx context.Context, a *models.Attachment) error
	AttachToEmail(ctx context.Context, attachmentID, emailID uuid.UUID) error
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error)
}

// SenderRegistry разрешает бэкенд доставки по алиасу.
type SenderRegistry interface {
	Get(alias string) (sender.Sender, error)
}

// TemplateCache — необязательный кэш шаблонов (nil отключает).
type TemplateCache interface {
	GetTemplate(ctx context.Context, name, language string) ([]byte, error)
	SetTemplate(ctx context.Context, name, language string, data []byte, ttl time.Duration) error
	InvalidateTemplate(ctx context.Context, name, language string) error
}
