package migrate

import (
	"context"

	"mail-service/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	WithLogs        bool // таблица логов доставки
	WithAttachments bool // вложения и связующая таблица
	CreateIndexes   bool // частичный индекс очереди
	CreateFKsViaSQL bool // FK через Exec после AutoMigrate
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		WithLogs:        true,
		WithAttachments: true,
		CreateIndexes:   true,
		CreateFKsViaSQL: true,
	}
}

func MigrateMailDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы данных почтового сервиса")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Error("Не удалось включить расширение pgcrypto", zap.Error(err))
		return err
	}

	log.Info("Создание базовых таблиц")
	// Вложения мигрируются до писем: связующая таблица email_attachments
	// создаётся вместе с emails и ссылается на attachments.
	base := []any{&models.EmailTemplate{}}
	if opt.WithAttachments {
		base = append(base, &models.Attachment{})
	}
	base = append(base, &models.Email{})
	if err := db.AutoMigrate(base...); err != nil {
		log.Error("Не удалось создать базовые таблицы", zap.Error(err))
		return err
	}

	if opt.WithLogs {
		if err := db.AutoMigrate(&models.Log{}); err != nil {
			log.Error("Не удалось создать таблицу логов", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		// Частичный индекс под выборку очереди диспетчером.
		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_emails_queue ON emails (scheduled_at, created_at)
WHERE status IN ('queued', 'requeued')
`).Error; err != nil {
			log.Error("Не удалось создать индекс очереди", zap.Error(err))
			return err
		}

		// Язык перевода уникален без учёта регистра: 'de' и 'DE' — один перевод.
		if err := db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS ux_templates_name_language_lower
ON email_templates (name, lower(language))
`).Error; err != nil {
			log.Error("Не удалось создать уникальный индекс шаблонов", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")
		if err := db.Exec(`
ALTER TABLE emails
  DROP CONSTRAINT IF EXISTS fk_emails_template,
  ADD CONSTRAINT fk_emails_template FOREIGN KEY (template_id) REFERENCES email_templates(id) ON DELETE SET NULL;
`).Error; err != nil {
			log.Error("Не удалось создать FK emails.template_id -> email_templates.id", zap.Error(err))
			return err
		}

		if opt.WithLogs {
			if err := db.Exec(`
ALTER TABLE logs
  DROP CONSTRAINT IF EXISTS fk_logs_email,
  ADD CONSTRAINT fk_logs_email FOREIGN KEY (email_id) REFERENCES emails(id) ON DELETE CASCADE;
`).Error; err != nil {
				log.Error("Не удалось создать FK logs.email_id -> emails.id", zap.Error(err))
				return err
			}
		}
	}

	log.Info("Миграция базы данных почтового сервиса успешно завершена")
	return nil
}
