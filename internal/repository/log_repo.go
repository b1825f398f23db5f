package repository

import (
	"context"

	"mail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LogRepo interface {
	Create(ctx context.Context, l *models.Log) error
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Log, error)
}

type logRepo struct{ db *gorm.DB }

func NewLogRepo(db *gorm.DB) LogRepo { return &logRepo{db: db} }

func (r *logRepo) Create(ctx context.Context, l *models.Log) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *logRepo) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Log, error) {
	var logs []models.Log
	err := r.db.WithContext(ctx).
		Where("email_id = ?", emailID).
		Order("date DESC").
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
