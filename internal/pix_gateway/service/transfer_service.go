package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/pix-transfer-service/internal/saga"
)

// TransferProcessor runs the transfer saga. Satisfied by saga.Orchestrator
type TransferProcessor interface {
	ProcessTransfer(ctx context.Context, req *shared.TransferRequest) (*saga.TransferOutcome, error)
}

// TransferServiceImpl implements the TransferService interface
type TransferServiceImpl struct {
	orchestrator TransferProcessor
	transactions transaction.Repository
	logger       *slog.Logger
}

// NewTransferService creates a new transfer service
func NewTransferService(logger *slog.Logger, orchestrator TransferProcessor, transactions transaction.Repository) TransferService {
	return &TransferServiceImpl{
		orchestrator: orchestrator,
		transactions: transactions,
		logger:       logger,
	}
}

// CreateTransfer runs the saga synchronously and returns its outcome
func (s *TransferServiceImpl) CreateTransfer(ctx context.Context, req *shared.TransferRequest) (*saga.TransferOutcome, error) {
	outcome, err := s.orchestrator.ProcessTransfer(ctx, req)
	if err != nil {
		s.logger.Error("Failed to process transfer",
			"source_account_id", req.SourceAccountID.String(),
			"idempotency_key", req.IdempotencyKey,
			"error", err,
		)
		return nil, err
	}
	return outcome, nil
}

// GetTransferByID retrieves a transfer by its ID. Returns nil if not found
func (s *TransferServiceImpl) GetTransferByID(ctx context.Context, id uuid.UUID) (*transaction.PixTransaction, error) {
	txn, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			s.logger.Info("Transfer not found", "transaction_id", id.String())
			return nil, nil
		}
		s.logger.Error("Failed to get transfer by ID", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	return txn, nil
}

// GetTransfersByAccountID retrieves paginated transfer history for an account
func (s *TransferServiceImpl) GetTransfersByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.PixTransaction, int64, error) {
	txns, total, err := s.transactions.ListByAccount(ctx, accountID, page, perPage)
	if err != nil {
		s.logger.Error("Failed to list transfers by account", "account_id", accountID.String(), "error", err)
		return nil, 0, err
	}
	return txns, total, nil
}
