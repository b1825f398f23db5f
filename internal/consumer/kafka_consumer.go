package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"mail-service/internal/models"
	"mail-service/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EmailMessage — входящее сообщение на постановку письма в очередь.
type EmailMessage struct {
	To          []string       `json:"to"`
	Cc          []string       `json:"cc,omitempty"`
	Bcc         []string       `json:"bcc,omitempty"`
	Subject     string         `json:"subject"`
	Template    string         `json:"template,omitempty"`
	Language    string         `json:"language,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Priority    string         `json:"priority,omitempty"`
	ScheduledAt *time.Time     `json:"scheduled_at,omitempty"`
}

type Enqueuer interface {
	Queue(ctx context.Context, req service.SendRequest) (*models.Email, error)
}

type KafkaEmailConsumer struct {
	reader   *kafka.Reader
	enqueuer Enqueuer
	log      *zap.Logger
}

func NewKafkaEmailConsumer(brokers []string, groupID, topic string, enqueuer Enqueuer, log *zap.Logger) *KafkaEmailConsumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           brokers,
		GroupID:           groupID,
		Topic:             topic,
		MinBytes:          10e3,
		MaxBytes:          10e6,
		CommitInterval:    time.Second,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    30 * time.Second,
	})
	return &KafkaEmailConsumer{reader: r, enqueuer: enqueuer, log: log}
}

func (c *KafkaEmailConsumer) Run(ctx context.Context) error {
	c.log.Info("kafka consumer started")
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			c.log.Error("read message", zap.Error(err))
			continue
		}
		var em EmailMessage
		if err := json.Unmarshal(m.Value, &em); err != nil {
			c.log.Error("unmarshal email message", zap.ByteString("value", m.Value), zap.Error(err))
			continue
		}
		if len(em.To) == 0 || (em.Template == "" && em.Subject == "") {
			c.log.Warn("invalid email message", zap.Any("msg", em))
			continue
		}

		req := service.SendRequest{
			To:           em.To,
			Cc:           em.Cc,
			Bcc:          em.Bcc,
			Subject:      em.Subject,
			TemplateName: em.Template,
			Language:     em.Language,
			Context:      em.Data,
			Priority:     parsePriority(em.Priority),
			ScheduledAt:  em.ScheduledAt,
		}
		email, err := c.enqueuer.Queue(ctx, req)
		if err != nil {
			c.log.Error("queue email failed",
				zap.Strings("to", em.To), zap.String("template", em.Template), zap.Error(err))
			continue
		}
		c.log.Info("email queued",
			zap.String("id", email.ID.String()),
			zap.Strings("to", em.To),
			zap.String("template", em.Template))
	}
}

func (c *KafkaEmailConsumer) Close() error { return c.reader.Close() }

// Неизвестный приоритет трактуется как приоритет по умолчанию.
func parsePriority(s string) models.Priority {
	switch p := models.Priority(s); p {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityNow:
		return p
	default:
		return ""
	}
}
