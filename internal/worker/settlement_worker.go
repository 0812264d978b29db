package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/domain/boleto"
)

// SettlementWorker confirms paid boletos once their clearing window has
// elapsed. Each tick confirms one batch in a single database transaction,
// then hands the confirmed boletos to the notifier. Ticks run sequentially
// on one goroutine, so batches never overlap.
type SettlementWorker struct {
	db       UnitOfWork
	boletos  boleto.Repository
	notifier Notifier
	logger   *slog.Logger

	pollInterval time.Duration
	delay        time.Duration
	batchSize    int
}

// NewSettlementWorker creates the worker. notifier may be nil when webhook
// delivery is disabled.
func NewSettlementWorker(
	cfg *config.SettlementConfig,
	db UnitOfWork,
	boletos boleto.Repository,
	notifier Notifier,
	logger *slog.Logger,
) *SettlementWorker {
	return &SettlementWorker{
		db:           db,
		boletos:      boletos,
		notifier:     notifier,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		delay:        cfg.Delay,
		batchSize:    cfg.BatchSize,
	}
}

// Start begins the settlement loop until context is canceled
func (w *SettlementWorker) Start(ctx context.Context) {
	w.logger.Info("Starting settlement worker",
		"poll_interval", w.pollInterval.String(),
		"settlement_delay", w.delay.String(),
		"batch_size", w.batchSize,
	)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Settlement worker stopping due to context cancellation.")
			return
		case <-ticker.C:
			if err := w.settleDueBoletos(ctx); err != nil {
				w.logger.Error("Error during boleto settlement batch", "error", err)
			}
		}
	}
}

// settleDueBoletos confirms every due boleto in one commit. Webhooks only
// fire after the commit succeeded, so a rolled-back batch notifies no one.
func (w *SettlementWorker) settleDueBoletos(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-w.delay)

	due, err := w.boletos.ListDue(ctx, cutoff, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to list due boletos: %w", err)
	}

	if len(due) == 0 {
		return nil
	}

	var confirmed []*boleto.Boleto
	err = w.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		repo := w.boletos.WithTx(tx)
		for _, b := range due {
			if err := b.Confirm(now, w.delay); err != nil {
				// ListDue raced another state change; skip, never fail the batch
				w.logger.Warn("Skipping boleto that is no longer settleable",
					"boleto_id", b.ID.String(),
					"status", string(b.Status),
					"error", err,
				)
				continue
			}
			if err := repo.Update(ctx, b); err != nil {
				return err
			}
			confirmed = append(confirmed, b)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to confirm boleto batch: %w", err)
	}

	w.logger.Info("Confirmed boleto batch", "count", len(confirmed))

	if w.notifier != nil {
		for _, b := range confirmed {
			w.notifier.Notify(b)
		}
	}

	return nil
}
