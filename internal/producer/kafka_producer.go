package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// EmailEventsProducer публикует события доставки в kafka.
type EmailEventsProducer struct {
	writer *kafka.Writer
}

func NewEmailEventsProducer(brokers []string, topic string) *EmailEventsProducer {
	return &EmailEventsProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

func (p *EmailEventsProducer) publish(ctx context.Context, key string, event any) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *EmailEventsProducer) PublishEmailSent(ctx context.Context, key string, event any) error {
	return p.publish(ctx, key, event)
}

func (p *EmailEventsProducer) PublishEmailFailed(ctx context.Context, key string, event any) error {
	return p.publish(ctx, key, event)
}

func (p *EmailEventsProducer) Close() error {
	return p.writer.Close()
}
