package repository

import (
	"context"
	"errors"
	"time"

	"mail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Порядок выборки из очереди: приоритет, затем время постановки.
const priorityRankSQL = `CASE priority WHEN 'now' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END`

type EmailFilter struct {
	Status *models.Status
	// Поиск по сырому значению колонки to (сериализованный список).
	To     string
	Limit  int
	Offset int
}

type EmailRepo interface {
	Create(ctx context.Context, e *models.Email) error
	CreateBatch(ctx context.Context, emails []*models.Email) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Email, error)
	List(ctx context.Context, f EmailFilter) ([]models.Email, error)
	DequeueDue(ctx context.Context, now time.Time, limit int) ([]models.Email, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	MarkQueuedForRetry(ctx context.Context, id uuid.UUID, retries int, nextAttempt time.Time) error
	Requeue(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}

type emailRepo struct{ db *gorm.DB }

func NewEmailRepo(db *gorm.DB) EmailRepo { return &emailRepo{db: db} }

func (r *emailRepo) Create(ctx context.Context, e *models.Email) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *emailRepo) CreateBatch(ctx context.Context, emails []*models.Email) error {
	if len(emails) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(emails, 500).Error
}

func (r *emailRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Email, error) {
	var e models.Email
	err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Attachments").
		First(&e, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (r *emailRepo) List(ctx context.Context, f EmailFilter) ([]models.Email, error) {
	q := r.db.WithContext(ctx).Model(&models.Email{}).Order("created_at DESC")
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.To != "" {
		q = q.Where("\"to\" = ?", models.SerializeAddresses(f.To))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var emails []models.Email
	if err := q.Find(&emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *emailRepo) DequeueDue(ctx context.Context, now time.Time, limit int) ([]models.Email, error) {
	var emails []models.Email
	err := r.db.WithContext(ctx).
		Preload("Template").
		Preload("Attachments").
		Where("status IN ?", []models.Status{models.StatusQueued, models.StatusRequeued}).
		Where("scheduled_at IS NULL OR scheduled_at <= ?", now).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order(priorityRankSQL).
		Order("created_at ASC").
		Limit(limit).
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *emailRepo) MarkSent(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", id).
		Update("status", models.StatusSent).Error
}

func (r *emailRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", id).
		Update("status", models.StatusFailed).Error
}

// MarkQueuedForRetry возвращает письмо в очередь с новой попыткой.
func (r *emailRepo) MarkQueuedForRetry(ctx context.Context, id uuid.UUID, retries int, nextAttempt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":            models.StatusRequeued,
			"number_of_retries": retries,
			"scheduled_at":      nextAttempt,
		}).Error
}

// Requeue — административное действие: вернуть письма в очередь.
func (r *emailRepo) Requeue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Email{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       models.StatusQueued,
			"scheduled_at": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *emailRepo) DeleteSentBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.StatusSent, cutoff).
		Delete(&models.Email{})
	return res.RowsAffected, res.Error
}

// DeleteExpiredBefore удаляет неотправленные письма с истёкшим expires_at.
func (r *emailRepo) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND expires_at IS NOT NULL AND expires_at < ?",
			[]models.Status{models.StatusQueued, models.StatusRequeued}, now).
		Delete(&models.Email{})
	return res.RowsAffected, res.Error
}
