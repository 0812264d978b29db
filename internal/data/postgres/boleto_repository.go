package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/domain/boleto"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/platform/persistence"
)

// BoletoRepository implements the boleto.Repository interface for PostgreSQL
type BoletoRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBoletoRepository creates a new PostgreSQL boleto repository
func NewBoletoRepository(logger *slog.Logger, db *persistence.PostgresDB) boleto.Repository {
	return &BoletoRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the settlement worker
// can confirm a batch in one commit.
func (r *BoletoRepository) WithTx(tx pgx.Tx) boleto.Repository {
	return &BoletoRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a newly paid boleto
func (r *BoletoRepository) Create(ctx context.Context, b *boleto.Boleto) error {
	query := `
		INSERT INTO boletos (id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		b.ID,
		b.ExternalID,
		b.Amount,
		b.Status,
		b.WebhookURL,
		b.PaidAt,
		b.ConfirmedAt,
		b.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create boleto", "boleto_id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to create boleto: %w", err)
	}

	return nil
}

// GetByID retrieves a boleto by its id
func (r *BoletoRepository) GetByID(ctx context.Context, id uuid.UUID) (*boleto.Boleto, error) {
	query := `
		SELECT id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at
		FROM boletos
		WHERE id = $1
	`

	var b boleto.Boleto
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.ExternalID,
		&b.Amount,
		&b.Status,
		&b.WebhookURL,
		&b.PaidAt,
		&b.ConfirmedAt,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, boleto.ErrBoletoNotFound{ID: id}
		}
		r.logger.Error("Failed to get boleto", "boleto_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get boleto: %w", err)
	}

	return &b, nil
}

// ListDue retrieves processing boletos whose clearing window has elapsed.
// Selection by status keeps the worker idempotent: a confirmed boleto can
// never be picked up again.
func (r *BoletoRepository) ListDue(ctx context.Context, paidBefore time.Time, limit int) ([]*boleto.Boleto, error) {
	query := `
		SELECT id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at
		FROM boletos
		WHERE status = $1 AND paid_at <= $2
		ORDER BY paid_at ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, shared.BoletoStatusProcessing, paidBefore, limit)
	if err != nil {
		r.logger.Error("Failed to list due boletos", "error", err)
		return nil, fmt.Errorf("failed to list due boletos: %w", err)
	}
	defer rows.Close()

	var boletos []*boleto.Boleto
	for rows.Next() {
		var b boleto.Boleto
		err := rows.Scan(
			&b.ID,
			&b.ExternalID,
			&b.Amount,
			&b.Status,
			&b.WebhookURL,
			&b.PaidAt,
			&b.ConfirmedAt,
			&b.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan boleto row", "error", err)
			return nil, fmt.Errorf("failed to scan boleto row: %w", err)
		}
		boletos = append(boletos, &b)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over boleto rows", "error", err)
		return nil, fmt.Errorf("error iterating over boleto rows: %w", err)
	}

	return boletos, nil
}

// Update persists a settlement transition
func (r *BoletoRepository) Update(ctx context.Context, b *boleto.Boleto) error {
	query := `
		UPDATE boletos
		SET status = $1, confirmed_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, b.Status, b.ConfirmedAt, b.ID)
	if err != nil {
		r.logger.Error("Failed to update boleto", "boleto_id", b.ID.String(), "error", err)
		return fmt.Errorf("failed to update boleto: %w", err)
	}

	if result.RowsAffected() == 0 {
		return boleto.ErrBoletoNotFound{ID: b.ID}
	}

	return nil
}
