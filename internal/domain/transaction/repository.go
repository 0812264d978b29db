package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/domain/shared"
)

// Repository is the transaction record store consumed by the saga
// orchestrator. Idempotency key uniqueness is enforced by a unique index,
// not an application-level check, so a race between concurrent duplicate
// submissions always leaves exactly one record.
type Repository interface {
	Add(ctx context.Context, txn *PixTransaction) error
	Update(ctx context.Context, txn *PixTransaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*PixTransaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*PixTransaction, error)
	ListByStatus(ctx context.Context, status shared.TransactionStatus, limit int) ([]*PixTransaction, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, page, pageSize int) ([]*PixTransaction, int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrTransactionNotFound indicates a missing transaction record
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrTransactionNotFound
func (e ErrTransactionNotFound) Is(target error) bool {
	_, ok := target.(ErrTransactionNotFound)
	return ok
}

// ErrDuplicateIdempotencyKey indicates the unique index rejected an insert.
// The losing caller must retry as a lookup.
type ErrDuplicateIdempotencyKey struct {
	IdempotencyKey string
}

func (e ErrDuplicateIdempotencyKey) Error() string {
	return "transaction with idempotency key already exists: " + e.IdempotencyKey
}

// Is implements the errors.Is interface for ErrDuplicateIdempotencyKey
func (e ErrDuplicateIdempotencyKey) Is(target error) bool {
	_, ok := target.(ErrDuplicateIdempotencyKey)
	return ok
}
