// Package service exposes the gateway's application services: the transfer
// service that fronts the saga orchestrator and the boleto service that
// registers paid instruments for later settlement.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/boleto"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/pix-transfer-service/internal/saga"
)

// TransferService defines the interface for transfer operations
type TransferService interface {
	// CreateTransfer runs the transfer saga synchronously to a terminal
	// state. Resubmissions with a known idempotency key return the original
	// outcome without re-executing the saga.
	CreateTransfer(ctx context.Context, req *shared.TransferRequest) (*saga.TransferOutcome, error)

	// GetTransferByID retrieves a transfer by its ID
	// Returns nil if the transfer is not found
	GetTransferByID(ctx context.Context, id uuid.UUID) (*transaction.PixTransaction, error)

	// GetTransfersByAccountID retrieves paginated transfer history for an
	// account, matching either side of the transfer.
	// Returns transfers, total count, and any error
	GetTransfersByAccountID(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*transaction.PixTransaction, int64, error)
}

// BoletoService defines the interface for boleto operations
type BoletoService interface {
	// RegisterPayment records a paid boleto. The settlement worker confirms
	// it once the clearing window elapses.
	RegisterPayment(ctx context.Context, externalID string, amount int64, webhookURL string) (*boleto.Boleto, error)

	// GetBoletoByID retrieves a boleto by its ID
	// Returns nil if the boleto is not found
	GetBoletoByID(ctx context.Context, id uuid.UUID) (*boleto.Boleto, error)
}
