// Package worker contains the background loops of the worker binary: the
// outbox relay that moves committed events to Kafka and the settlement
// worker that confirms boletos after their clearing window.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/domain/outbox"
	"github.com/pix-transfer-service/internal/platform/messaging/producers"
)

// UnitOfWork runs a function inside a single database transaction. Satisfied
// by persistence.PostgresDB.
type UnitOfWork interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// OutboxRelay polls unprocessed outbox messages and publishes them to the
// event stream. Delivery is at-least-once: a message is only marked
// processed after the broker acknowledged it, so consumers must tolerate
// replays.
type OutboxRelay struct {
	outboxRepo outbox.Repository
	events     producers.MessagePublisher
	alerts     producers.AlertPublisher
	logger     *slog.Logger

	pollInterval time.Duration
	batchSize    int
}

// NewOutboxRelay creates the relay. alerts may be nil when the alert topic
// is not configured.
func NewOutboxRelay(
	cfg *config.OutboxConfig,
	outboxRepo outbox.Repository,
	events producers.MessagePublisher,
	alerts producers.AlertPublisher,
	logger *slog.Logger,
) *OutboxRelay {
	return &OutboxRelay{
		outboxRepo:   outboxRepo,
		events:       events,
		alerts:       alerts,
		logger:       logger,
		pollInterval: cfg.PollingInterval,
		batchSize:    cfg.BatchSize,
	}
}

// Start begins polling until context is canceled
func (r *OutboxRelay) Start(ctx context.Context) {
	r.logger.Info("Starting outbox relay",
		"poll_interval", r.pollInterval.String(),
		"batch_size", r.batchSize,
	)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := r.processPendingMessages(ctx); err != nil {
				r.logger.Error("Error during batch processing of pending outbox messages", "error", err)
			}
		}
	}
}

func (r *OutboxRelay) processPendingMessages(ctx context.Context) error {
	messages, err := r.outboxRepo.ListUnprocessed(ctx, r.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list unprocessed outbox messages: %w", err)
	}

	if len(messages) == 0 {
		return nil
	}

	r.logger.Info("Fetched unprocessed outbox messages", "count", len(messages))

	for _, msg := range messages {
		if err := r.relayMessage(ctx, msg); err != nil {
			r.logger.Error("Failed to relay outbox message",
				"outbox_id", msg.ID, "type", string(msg.Type), "retry_count", msg.RetryCount, "error", err,
			)
			if errInc := r.outboxRepo.IncrementRetry(ctx, msg.ID); errInc != nil {
				r.logger.Error("Failed to increment retry count for outbox message", "outbox_id", msg.ID, "error", errInc)
			}
			continue
		}

		if err := r.outboxRepo.MarkProcessed(ctx, msg.ID); err != nil {
			// The event went out; the next pick-up republishes, which
			// at-least-once delivery already allows.
			r.logger.Error("Published outbox message but failed to mark it processed", "outbox_id", msg.ID, "error", err)
		}
	}
	return nil
}

// relayMessage publishes one message to the event stream, plus the alert
// topic when the event flags a failed compensation.
func (r *OutboxRelay) relayMessage(ctx context.Context, msg *outbox.Message) error {
	event, err := msg.TransferEvent()
	if err != nil {
		return fmt.Errorf("failed to decode outbox payload for message %d: %w", msg.ID, err)
	}

	key := event.TransactionID.String()

	logger := r.logger
	if event.CorrelationID != "" {
		logger = r.logger.With("correlation_id", event.CorrelationID)
	}

	if err := r.events.Publish(ctx, key, msg.Content); err != nil {
		return err
	}

	if msg.RequiresIntervention() && r.alerts != nil {
		if err := r.alerts.PublishAlert(ctx, key, msg.Content, event.Reason); err != nil {
			// Keep the message unprocessed so the alert is retried with it
			return fmt.Errorf("event published but alert failed for message %d: %w", msg.ID, err)
		}
	}

	logger.Info("Relayed outbox message",
		"outbox_id", msg.ID,
		"type", string(msg.Type),
		"transaction_id", key,
	)
	return nil
}
