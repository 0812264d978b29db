// Package postgres provides PostgreSQL implementations of the domain
// repositories: the transaction record store, the transactional outbox and
// the boleto store. All writes run against a Querier so the saga can commit
// a state transition and its outbox message in one pgx transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/pix-transfer-service/internal/platform/persistence"
)

const uniqueViolationCode = "23505"

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so a status change and its
// outbox message commit atomically.
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Add inserts a new transaction. The unique index on idempotency_key is the
// source of truth for duplicate submissions: the losing insert of a
// concurrent duplicate pair returns ErrDuplicateIdempotencyKey and must be
// retried as a lookup.
func (r *TransactionRepository) Add(ctx context.Context, txn *transaction.PixTransaction) error {
	query := `
		INSERT INTO pix_transactions (id, source_account_id, destination_account_id, amount, pix_key, description, idempotency_key, status, failure_reason, correlation_id, created_at, debited_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		txn.ID,
		txn.SourceAccountID,
		txn.DestinationAccountID,
		txn.Amount,
		txn.PixKey,
		txn.Description,
		txn.IdempotencyKey,
		txn.Status,
		txn.FailureReason,
		txn.CorrelationID,
		txn.CreatedAt,
		txn.DebitedAt,
		txn.CompletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return transaction.ErrDuplicateIdempotencyKey{IdempotencyKey: txn.IdempotencyKey}
		}
		r.logger.Error("Failed to insert transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Update persists a state transition. The orchestrator only ever moves
// records forward along the state machine.
func (r *TransactionRepository) Update(ctx context.Context, txn *transaction.PixTransaction) error {
	query := `
		UPDATE pix_transactions
		SET status = $1, failure_reason = $2, debited_at = $3, completed_at = $4
		WHERE id = $5
	`

	result, err := r.querier.Exec(ctx, query,
		txn.Status,
		txn.FailureReason,
		txn.DebitedAt,
		txn.CompletedAt,
		txn.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update transaction", "transaction_id", txn.ID.String(), "error", err)
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	if result.RowsAffected() == 0 {
		return transaction.ErrTransactionNotFound{ID: txn.ID}
	}

	return nil
}

const transactionColumns = `id, source_account_id, destination_account_id, amount, pix_key, description, idempotency_key, status, failure_reason, correlation_id, created_at, debited_at, completed_at`

// FindByID retrieves a transaction by its id
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*transaction.PixTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM pix_transactions
		WHERE id = $1
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "transaction_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return txn, nil
}

// FindByIdempotencyKey retrieves a transaction by its idempotency key.
// Returns nil, nil when no transaction exists for the key.
func (r *TransactionRepository) FindByIdempotencyKey(ctx context.Context, key string) (*transaction.PixTransaction, error) {
	if key == "" {
		return nil, errors.New("idempotency key cannot be empty")
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM pix_transactions
		WHERE idempotency_key = $1
	`

	txn, err := r.scanOne(r.querier.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get transaction by idempotency key", "idempotency_key", key, "error", err)
		return nil, fmt.Errorf("failed to get transaction by idempotency key: %w", err)
	}

	return txn, nil
}

// ListByStatus retrieves transactions in a given state, oldest first
func (r *TransactionRepository) ListByStatus(ctx context.Context, status shared.TransactionStatus, limit int) ([]*transaction.PixTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM pix_transactions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2
	`

	rows, err := r.querier.Query(ctx, query, status, limit)
	if err != nil {
		r.logger.Error("Failed to list transactions by status", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to list transactions by status: %w", err)
	}
	defer rows.Close()

	return r.scanAll(rows)
}

// ListByAccount retrieves paginated transaction history for an account,
// matching either side of the transfer, newest first.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*transaction.PixTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + transactionColumns + `
		FROM pix_transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, accountID, pageSize, offset)
	if err != nil {
		r.logger.Error("Failed to list transactions by account", "account_id", accountID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to list transactions by account: %w", err)
	}
	defer rows.Close()

	txns, err := r.scanAll(rows)
	if err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*)
		FROM pix_transactions
		WHERE source_account_id = $1 OR destination_account_id = $1
	`

	var total int64
	if err := r.querier.QueryRow(ctx, countQuery, accountID).Scan(&total); err != nil {
		r.logger.Error("Failed to count transactions by account", "account_id", accountID.String(), "error", err)
		return nil, 0, fmt.Errorf("failed to count transactions by account: %w", err)
	}

	return txns, total, nil
}

func (r *TransactionRepository) scanOne(row pgx.Row) (*transaction.PixTransaction, error) {
	var txn transaction.PixTransaction
	err := row.Scan(
		&txn.ID,
		&txn.SourceAccountID,
		&txn.DestinationAccountID,
		&txn.Amount,
		&txn.PixKey,
		&txn.Description,
		&txn.IdempotencyKey,
		&txn.Status,
		&txn.FailureReason,
		&txn.CorrelationID,
		&txn.CreatedAt,
		&txn.DebitedAt,
		&txn.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) scanAll(rows pgx.Rows) ([]*transaction.PixTransaction, error) {
	var txns []*transaction.PixTransaction
	for rows.Next() {
		var txn transaction.PixTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.SourceAccountID,
			&txn.DestinationAccountID,
			&txn.Amount,
			&txn.PixKey,
			&txn.Description,
			&txn.IdempotencyKey,
			&txn.Status,
			&txn.FailureReason,
			&txn.CorrelationID,
			&txn.CreatedAt,
			&txn.DebitedAt,
			&txn.CompletedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan transaction row", "error", err)
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transaction rows", "error", err)
		return nil, fmt.Errorf("error iterating over transaction rows: %w", err)
	}

	return txns, nil
}
