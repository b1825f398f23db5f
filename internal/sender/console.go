package sender

import (
	"context"

	"mail-service/internal/models"

	"go.uber.org/zap"
)

// ConsoleSender пишет письмо в лог вместо отправки. Для разработки.
type ConsoleSender struct {
	log *zap.Logger
}

func NewConsoleSender(log *zap.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(_ context.Context, e *models.Email) error {
	s.log.Info("console mail backend",
		zap.String("from", e.FromEmail),
		zap.String("to", e.To.String()),
		zap.String("subject", e.Subject),
		zap.String("message", e.Message),
	)
	return nil
}

func (s *ConsoleSender) Close() error { return nil }
