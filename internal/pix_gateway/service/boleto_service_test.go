package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/domain/boleto"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBoletoRepo struct {
	mock.Mock
}

func (m *MockBoletoRepo) Create(ctx context.Context, b *boleto.Boleto) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBoletoRepo) GetByID(ctx context.Context, id uuid.UUID) (*boleto.Boleto, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*boleto.Boleto), args.Error(1)
}

func (m *MockBoletoRepo) ListDue(ctx context.Context, paidBefore time.Time, limit int) ([]*boleto.Boleto, error) {
	args := m.Called(ctx, paidBefore, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*boleto.Boleto), args.Error(1)
}

func (m *MockBoletoRepo) Update(ctx context.Context, b *boleto.Boleto) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBoletoRepo) WithTx(tx pgx.Tx) boleto.Repository { return m }

func TestBoletoService_RegisterPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockBoletoRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(b *boleto.Boleto) bool {
			return b.Status == shared.BoletoStatusProcessing && b.Amount == 99000 && b.PaidAt != nil
		})).Return(nil)

		svc := NewBoletoService(serviceLogger(), repo)
		b, err := svc.RegisterPayment(ctx, "ext-1", 99000, "https://merchant.example/hooks")

		require.NoError(t, err)
		assert.Equal(t, "ext-1", b.ExternalID)
		assert.Equal(t, shared.BoletoStatusProcessing, b.Status)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		repo := new(MockBoletoRepo)
		svc := NewBoletoService(serviceLogger(), repo)

		b, err := svc.RegisterPayment(ctx, "ext-1", 0, "")

		assert.ErrorIs(t, err, boleto.ErrInvalidAmount)
		assert.Nil(t, b)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("RepositoryErrorPropagates", func(t *testing.T) {
		repo := new(MockBoletoRepo)
		expectedErr := errors.New("connection lost")
		repo.On("Create", mock.Anything, mock.Anything).Return(expectedErr)

		svc := NewBoletoService(serviceLogger(), repo)
		b, err := svc.RegisterPayment(ctx, "ext-1", 99000, "")

		assert.ErrorIs(t, err, expectedErr)
		assert.Nil(t, b)
	})
}

func TestBoletoService_GetBoletoByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo := new(MockBoletoRepo)
		b, err := boleto.NewPaid("ext-1", 99000, "")
		require.NoError(t, err)
		repo.On("GetByID", mock.Anything, b.ID).Return(b, nil)

		svc := NewBoletoService(serviceLogger(), repo)
		got, err := svc.GetBoletoByID(ctx, b.ID)

		require.NoError(t, err)
		assert.Equal(t, b.ID, got.ID)
	})

	t.Run("NotFoundReturnsNil", func(t *testing.T) {
		repo := new(MockBoletoRepo)
		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(nil, boleto.ErrBoletoNotFound{ID: id})

		svc := NewBoletoService(serviceLogger(), repo)
		got, err := svc.GetBoletoByID(ctx, id)

		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}
