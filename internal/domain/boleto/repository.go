package boleto

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages boleto persistence. ListDue selects by
// status=PROCESSING and paid_at cutoff, which makes the settlement worker
// idempotent across missed or repeated ticks.
type Repository interface {
	Create(ctx context.Context, b *Boleto) error
	GetByID(ctx context.Context, id uuid.UUID) (*Boleto, error)
	ListDue(ctx context.Context, paidBefore time.Time, limit int) ([]*Boleto, error)
	Update(ctx context.Context, b *Boleto) error
	WithTx(tx pgx.Tx) Repository
}

// ErrBoletoNotFound indicates a missing boleto record
type ErrBoletoNotFound struct {
	ID uuid.UUID
}

func (e ErrBoletoNotFound) Error() string {
	return "boleto not found: " + e.ID.String()
}

// Is implements the errors.Is interface for ErrBoletoNotFound
func (e ErrBoletoNotFound) Is(target error) bool {
	_, ok := target.(ErrBoletoNotFound)
	return ok
}
