package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pix-transfer-service/internal/config"
	"github.com/segmentio/kafka-go"
)

type AlertProducer struct {
	logger     *slog.Logger
	writer     KafkaWriter
	alertTopic string
}

// NewAlertProducer returns nil producer if cfg.AlertTopic is empty (alerts
// disabled). Alerts carry failed-compensation events to operators, so writes
// require acknowledgment from all replicas.
func NewAlertProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*AlertProducer, error) {
	if cfg.AlertTopic == "" {
		logger.Info("Alert topic is not configured. AlertProducer will not be initialized.")
		return nil, nil
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for alert producer: %w", err)
	}
	defer conn.Close()

	if err := createKafkaTopicIfNotExists(conn, cfg.AlertTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure alert topic %s exists: %w", cfg.AlertTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &AlertProducer{
		logger:     logger,
		writer:     writer,
		alertTopic: cfg.AlertTopic,
	}, nil
}

// PublishAlert wraps the original event with the alert reason and forwards it
func (p *AlertProducer) PublishAlert(ctx context.Context, key string, eventValue []byte, reason string) error {
	if p == nil || p.writer == nil {
		return fmt.Errorf("alert producer not initialized")
	}

	alertPayload := struct {
		TransactionID string `json:"transaction_id"`
		Event         string `json:"event"`
		Reason        string `json:"reason"`
		Timestamp     string `json:"timestamp"`
	}{
		TransactionID: key,
		Event:         string(eventValue),
		Reason:        reason,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
	}

	jsonValue, err := json.Marshal(alertPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Headers: []kafka.Header{
			{Key: "alert-reason", Value: []byte(reason)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish alert",
			"topic", p.alertTopic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish alert to %s: %w", p.alertTopic, err)
	}

	p.logger.Info("Published manual intervention alert",
		"topic", p.alertTopic,
		"key", key,
		"reason", reason,
	)
	return nil
}

func (p *AlertProducer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	p.logger.Info("Closing alert producer", "topic", p.alertTopic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.alertTopic, err)
	}
	return nil
}
