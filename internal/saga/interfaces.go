package saga

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// UnitOfWork runs a function inside a single database transaction. Satisfied
// by persistence.PostgresDB.
type UnitOfWork interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
