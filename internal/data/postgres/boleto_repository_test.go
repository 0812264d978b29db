package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pix-transfer-service/internal/domain/boleto"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBoleto(t *testing.T) *boleto.Boleto {
	t.Helper()
	b, err := boleto.NewPaid("34191790010104351004791020150008291070026000", 150000, "https://merchant.example/hooks/boleto")
	require.NoError(t, err)
	return b
}

func boletoRows(b *boleto.Boleto) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "external_id", "amount", "status", "webhook_url", "paid_at", "confirmed_at", "created_at",
	}).AddRow(b.ID, b.ExternalID, b.Amount, b.Status, b.WebhookURL, b.PaidAt, b.ConfirmedAt, b.CreatedAt)
}

func TestBoletoRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BoletoRepository{querier: mock, logger: newTestLogger()}
	b := newTestBoleto(t)

	mock.ExpectExec(`
		INSERT INTO boletos \(id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, \$7, \$8\)
	`).
		WithArgs(b.ID, b.ExternalID, b.Amount, b.Status, b.WebhookURL, b.PaidAt, b.ConfirmedAt, b.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(ctx, b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoletoRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BoletoRepository{querier: mock, logger: newTestLogger()}
	b := newTestBoleto(t)

	query := `
		SELECT id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at
		FROM boletos
		WHERE id = \$1
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).WithArgs(b.ID).WillReturnRows(boletoRows(b))

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
		assert.Equal(t, shared.BoletoStatusProcessing, got.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row returns not found", func(t *testing.T) {
		missingID := uuid.New()
		mock.ExpectQuery(query).WithArgs(missingID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, missingID)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, boleto.ErrBoletoNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBoletoRepository_ListDue(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BoletoRepository{querier: mock, logger: newTestLogger()}
	b := newTestBoleto(t)
	cutoff := time.Now().UTC().Add(-time.Minute)

	mock.ExpectQuery(`
		SELECT id, external_id, amount, status, webhook_url, paid_at, confirmed_at, created_at
		FROM boletos
		WHERE status = \$1 AND paid_at <= \$2
		ORDER BY paid_at ASC
		LIMIT \$3
	`).
		WithArgs(shared.BoletoStatusProcessing, cutoff, 100).
		WillReturnRows(boletoRows(b))

	due, err := repo.ListDue(ctx, cutoff, 100)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, b.ID, due[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoletoRepository_Update(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BoletoRepository{querier: mock, logger: newTestLogger()}
	b := newTestBoleto(t)
	require.NoError(t, b.Confirm(time.Now().UTC().Add(2*time.Minute), time.Minute))

	query := `
		UPDATE boletos
		SET status = \$1, confirmed_at = \$2
		WHERE id = \$3
	`

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(b.Status, b.ConfirmedAt, b.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.Update(ctx, b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row returns not found", func(t *testing.T) {
		mock.ExpectExec(query).
			WithArgs(b.Status, b.ConfirmedAt, b.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Update(ctx, b)
		assert.ErrorIs(t, err, boleto.ErrBoletoNotFound{})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
