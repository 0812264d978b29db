package producers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pix-transfer-service/internal/config"
	"github.com/segmentio/kafka-go"
)

type TransferEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewTransferEventProducer creates the relay's event producer and ensures the
// topic exists. Writes are synchronous: the relay must not mark an outbox
// message processed before the broker acknowledged it.
func NewTransferEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*TransferEventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for transfer event producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.EventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", cfg.EventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &TransferEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventTopic,
	}, nil
}

// Publish writes one event. The key is the transaction id, so all events of
// a transfer land on the same partition in order.
func (p *TransferEventProducer) Publish(ctx context.Context, key string, value []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish transfer event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish transfer event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published transfer event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *TransferEventProducer) Close() error {
	p.logger.Info("Closing transfer event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
