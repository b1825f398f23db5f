package cleanup

import (
	"context"
	"time"

	"mail-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleanupService struct {
	db  *gorm.DB
	log *zap.Logger

	retentionDays    int
	logRetentionDays int
}

func NewCleanupService(db *gorm.DB, retentionDays, logRetentionDays int, log *zap.Logger) *CleanupService {
	return &CleanupService{
		db:               db,
		log:              log,
		retentionDays:    retentionDays,
		logRetentionDays: logRetentionDays,
	}
}

// CleanupSentEmails удаляет отправленные письма старше срока хранения.
func (c *CleanupService) CleanupSentEmails(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -c.retentionDays)

	result := c.db.WithContext(ctx).
		Exec("DELETE FROM emails WHERE status = ? AND created_at < ?", models.StatusSent, cutoff)
	if result.Error != nil {
		c.log.Error("failed to cleanup sent emails", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up sent emails", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// CleanupExpiredEmails удаляет письма, у которых истёк expires_at до отправки.
func (c *CleanupService) CleanupExpiredEmails(ctx context.Context) error {
	now := time.Now()

	result := c.db.WithContext(ctx).
		Exec("DELETE FROM emails WHERE status IN (?, ?) AND expires_at IS NOT NULL AND expires_at < ?",
			models.StatusQueued, models.StatusRequeued, now)
	if result.Error != nil {
		c.log.Error("failed to cleanup expired emails", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up expired emails", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// CleanupLogs удаляет записи журнала доставки старше срока хранения.
func (c *CleanupService) CleanupLogs(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -c.logRetentionDays)

	result := c.db.WithContext(ctx).
		Exec("DELETE FROM logs WHERE date < ?", cutoff)
	if result.Error != nil {
		c.log.Error("failed to cleanup delivery logs", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up delivery logs", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// CleanupOrphanedAttachments удаляет вложения без связанных писем.
func (c *CleanupService) CleanupOrphanedAttachments(ctx context.Context) error {
	query := `
		DELETE FROM attachments
		WHERE id NOT IN (
			SELECT DISTINCT attachment_id
			FROM email_attachments
		)
	`
	result := c.db.WithContext(ctx).Exec(query)
	if result.Error != nil {
		c.log.Error("failed to cleanup orphaned attachments", zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected > 0 {
		c.log.Info("cleaned up orphaned attachments", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// RunFullCleanup выполняет все задачи очистки.
func (c *CleanupService) RunFullCleanup(ctx context.Context) error {
	c.log.Info("starting full cleanup")

	if err := c.CleanupSentEmails(ctx); err != nil {
		return err
	}
	if err := c.CleanupExpiredEmails(ctx); err != nil {
		return err
	}
	if err := c.CleanupLogs(ctx); err != nil {
		return err
	}
	if err := c.CleanupOrphanedAttachments(ctx); err != nil {
		return err
	}

	c.log.Info("full cleanup completed")
	return nil
}
