package repository

import (
	"context"

	"mail-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AttachmentRepo interface {
	Create(ctx context.Context, a *models.Attachment) error
	AttachToEmail(ctx context.Context, attachmentID, emailID uuid.UUID) error
	ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error)
}

type attachmentRepo struct{ db *gorm.DB }

func NewAttachmentRepo(db *gorm.DB) AttachmentRepo { return &attachmentRepo{db: db} }

func (r *attachmentRepo) Create(ctx context.Context, a *models.Attachment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *attachmentRepo) AttachToEmail(ctx context.Context, attachmentID, emailID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO email_attachments (email_id, attachment_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
			emailID, attachmentID).Error
}

func (r *attachmentRepo) ListByEmail(ctx context.Context, emailID uuid.UUID) ([]models.Attachment, error) {
	var attachments []models.Attachment
	err := r.db.WithContext(ctx).
		Joins("JOIN email_attachments ea ON ea.attachment_id = attachments.id").
		Where("ea.email_id = ?", emailID).
		Find(&attachments).Error
	if err != nil {
		return nil, err
	}
	return attachments, nil
}
