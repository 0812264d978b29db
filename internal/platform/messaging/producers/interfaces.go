// Package producers contains the Kafka publishers used by the outbox relay:
// one for the main integration event stream and one for the alert topic that
// carries failures needing manual intervention.
package producers

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// MessagePublisher handles publishing integration events to the event topic
type MessagePublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
	Close() error
}

// AlertPublisher handles publishing manual-intervention alerts
type AlertPublisher interface {
	PublishAlert(ctx context.Context, key string, eventValue []byte, reason string) error
	Close() error
}

// KafkaWriter wraps kafka.Writer methods for testing
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}
