package sender

import (
	"context"
	"errors"
	"fmt"

	"mail-service/internal/models"
)

// DefaultAlias — бэкенд, используемый когда у письма не задан алиас.
const DefaultAlias = "default"

// Sender — бэкенд доставки письма.
type Sender interface {
	Send(ctx context.Context, e *models.Email) error
	Close() error
}

// ErrBackendNotFound — у письма задан алиас, которого нет в конфигурации.
// Отличается от ошибок доставки.
var ErrBackendNotFound = errors.New("mail backend not found")

// Registry хранит бэкенды по алиасам. Алиас "default" обязателен.
type Registry struct {
	senders map[string]Sender
}

func NewRegistry() *Registry {
	return &Registry{senders: make(map[string]Sender)}
}

func (r *Registry) Register(alias string, s Sender) {
	r.senders[alias] = s
}

func (r *Registry) Get(alias string) (Sender, error) {
	if alias == "" {
		alias = DefaultAlias
	}
	s, ok := r.senders[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotFound, alias)
	}
	return s, nil
}

func (r *Registry) Close() error {
	var firstErr error
	for _, s := range r.senders {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
