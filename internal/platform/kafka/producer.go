// Package kafka implements the outbound-notification collaborator. The
// request path never awaits a publish; callers fire it after the
// mutation's response is prepared and swallow any failure.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer publishes notification events to a Kafka topic.
type Producer struct {
	writer *kafka.Writer
}

// NewProducer builds a producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// Publish sends one event envelope keyed by event type.
func (p *Producer) Publish(ctx context.Context, eventType string, payload interface{}) error {
	value, err := json.Marshal(map[string]interface{}{
		"type":      eventType,
		"payload":   payload,
		"timestamp": time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(eventType),
		Value: value,
	})
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NoOpProducer discards every event. Used when the notification
// transport is not configured, mirroring the fail-safe behavior of the
// reference deployment.
type NoOpProducer struct{}

// NewNoOpProducer returns a producer that does nothing.
func NewNoOpProducer() *NoOpProducer {
	return &NoOpProducer{}
}

// Publish discards the event.
func (p *NoOpProducer) Publish(ctx context.Context, eventType string, payload interface{}) error {
	return nil
}

// Close is a no-op.
func (p *NoOpProducer) Close() error {
	return nil
}
