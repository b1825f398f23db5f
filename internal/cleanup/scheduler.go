package cleanup

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	cleanup *CleanupService
	log     *zap.Logger
	stopCh  chan struct{}
}

func NewScheduler(cleanup *CleanupService, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cleanup: cleanup,
		log:     log,
		stopCh:  make(chan struct{}),
	}
}

// Start запускает планировщик задач очистки.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("starting cleanup scheduler")

	go s.runMailCleanup(ctx)
	go s.runLogCleanup(ctx)
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	s.log.Info("stopping cleanup scheduler")
	close(s.stopCh)
}

// runMailCleanup очищает письма каждые 6 часов.
func (s *Scheduler) runMailCleanup(ctx context.Context) {
	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.cleanup.CleanupSentEmails(ctx); err != nil {
				s.log.Error("sent emails cleanup failed", zap.Error(err))
			}
			if err := s.cleanup.CleanupExpiredEmails(ctx); err != nil {
				s.log.Error("expired emails cleanup failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("mail cleanup stopped")
			return
		case <-ctx.Done():
			s.log.Info("mail cleanup cancelled")
			return
		}
	}
}

// runLogCleanup очищает журнал доставки и осиротевшие вложения раз в сутки.
func (s *Scheduler) runLogCleanup(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.cleanup.CleanupLogs(ctx); err != nil {
				s.log.Error("log cleanup failed", zap.Error(err))
			}
			if err := s.cleanup.CleanupOrphanedAttachments(ctx); err != nil {
				s.log.Error("orphaned attachments cleanup failed", zap.Error(err))
			}
		case <-s.stopCh:
			s.log.Info("log cleanup stopped")
			return
		case <-ctx.Done():
			s.log.Info("log cleanup cancelled")
			return
		}
	}
}
