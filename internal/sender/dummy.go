package sender

import (
	"context"
	"sync"

	"mail-service/internal/models"
)

// DummySender считает отправки, ничего не делая. Для тестов.
type DummySender struct {
	mu   sync.Mutex
	sent []*models.Email

	// FailWith — если задана, Send возвращает эту ошибку.
	FailWith error
}

func NewDummySender() *DummySender { return &DummySender{} }

func (s *DummySender) Send(_ context.Context, e *models.Email) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.sent = append(s.sent, e)
	return nil
}

func (s *DummySender) SentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *DummySender) Sent() []*models.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Email, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *DummySender) Close() error { return nil }
