package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/domain/outbox"
	"github.com/pix-transfer-service/internal/platform/persistence"
)

// OutboxRepository implements the outbox.Repository interface for PostgreSQL
type OutboxRepository struct {
	querier          persistence.Querier
	logger           *slog.Logger
	maxRetryAttempts int
}

// NewOutboxRepository creates a new PostgreSQL outbox repository.
// maxRetryAttempts caps how often ListUnprocessed re-surfaces a message the
// relay keeps failing to publish.
func NewOutboxRepository(logger *slog.Logger, db *persistence.PostgresDB, maxRetryAttempts int) outbox.Repository {
	return &OutboxRepository{
		querier:          db.Pool(),
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

// WithTx wraps the repository with a transaction. This is how a message is
// made durable in the same unit of work as the state change it describes.
func (r *OutboxRepository) WithTx(tx pgx.Tx) outbox.Repository {
	return &OutboxRepository{
		querier:          tx,
		logger:           r.logger,
		maxRetryAttempts: r.maxRetryAttempts,
	}
}

// Create stores a new unprocessed outbox message
func (r *OutboxRepository) Create(ctx context.Context, message *outbox.Message) error {
	query := `
		INSERT INTO transfer_outbox (type, content, created_at, retry_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		message.Type,
		message.Content,
		message.CreatedAt,
		message.RetryCount,
	).Scan(&message.ID)

	if err != nil {
		r.logger.Error("Failed to create outbox message", "type", string(message.Type), "error", err)
		return fmt.Errorf("failed to create outbox message: %w", err)
	}

	return nil
}

// ListUnprocessed retrieves a batch of unpublished messages in creation
// order, skipping messages that exhausted their retry budget.
func (r *OutboxRepository) ListUnprocessed(ctx context.Context, batchSize int) ([]*outbox.Message, error) {
	query := `
		SELECT id, type, content, created_at, processed_on, retry_count
		FROM transfer_outbox
		WHERE processed_on IS NULL AND retry_count < $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, r.maxRetryAttempts, batchSize)
	if err != nil {
		r.logger.Error("Failed to list unprocessed outbox messages", "error", err)
		return nil, fmt.Errorf("failed to list unprocessed outbox messages: %w", err)
	}
	defer rows.Close()

	var messages []*outbox.Message
	for rows.Next() {
		var message outbox.Message
		err := rows.Scan(
			&message.ID,
			&message.Type,
			&message.Content,
			&message.CreatedAt,
			&message.ProcessedOn,
			&message.RetryCount,
		)
		if err != nil {
			r.logger.Error("Failed to scan outbox message", "error", err)
			return nil, fmt.Errorf("failed to scan outbox message: %w", err)
		}
		messages = append(messages, &message)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over outbox messages", "error", err)
		return nil, fmt.Errorf("error iterating over outbox messages: %w", err)
	}

	return messages, nil
}

// MarkProcessed stamps the message as published
func (r *OutboxRepository) MarkProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE transfer_outbox
		SET processed_on = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to mark outbox message processed", "id", id, "error", err)
		return fmt.Errorf("failed to mark outbox message processed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}

	return nil
}

// IncrementRetry bumps the retry counter after a failed publish
func (r *OutboxRepository) IncrementRetry(ctx context.Context, id int64) error {
	query := `
		UPDATE transfer_outbox
		SET retry_count = retry_count + 1
		WHERE id = $1
	`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to increment outbox message retry count", "id", id, "error", err)
		return fmt.Errorf("failed to increment outbox message retry count: %w", err)
	}

	if result.RowsAffected() == 0 {
		return outbox.ErrMessageNotFound{ID: id}
	}

	return nil
}
