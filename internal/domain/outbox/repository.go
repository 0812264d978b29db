package outbox

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages outbox message persistence. Create must run inside the
// same pgx transaction as the business state change (use WithTx); the
// reader side serves the downstream relay in creation order.
type Repository interface {
	Create(ctx context.Context, message *Message) error
	ListUnprocessed(ctx context.Context, batchSize int) ([]*Message, error)
	MarkProcessed(ctx context.Context, id int64) error
	IncrementRetry(ctx context.Context, id int64) error
	WithTx(tx pgx.Tx) Repository
}
