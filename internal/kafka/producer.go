package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"buildnchill-shop/internal/logger"

	"github.com/segmentio/kafka-go"
)

// Publisher sends a keyed JSON event to a topic.
type Publisher interface {
	PublishJSON(ctx context.Context, topic, key string, payload interface{}) error
	Close() error
}

// Producer writes to any topic through a single kafka-go writer; the topic is
// set per message.
type Producer struct {
	Writer *kafka.Writer
	Logger *logger.Logger
}

func NewProducer(brokers []string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Producer{Writer: writer, Logger: log}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
	})
}

func (p *Producer) PublishJSON(ctx context.Context, topic, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", topic, err)
	}

	if err := p.Publish(ctx, topic, []byte(key), msgBytes); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	p.Logger.LogKafka("PUBLISHED", topic, key)
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NoopPublisher is used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishJSON(context.Context, string, string, interface{}) error { return nil }

func (NoopPublisher) Close() error { return nil }

// Emit publishes and logs a failure without returning it. Domain events
// never block the write that caused them.
func Emit(ctx context.Context, p Publisher, log *logger.Logger, topic, key string, payload interface{}) {
	if p == nil {
		return
	}
	if err := p.PublishJSON(ctx, topic, key, payload); err != nil && log != nil {
		log.Warn("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", topic, key, err))
	}
}
