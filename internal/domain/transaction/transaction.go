// Package transaction holds the PixTransaction aggregate, the system of
// record for the transfer saga's outcome. Records are created once, moved
// forward along the state machine, and never deleted.
package transaction

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/shared"
)

// ErrInvalidTransition indicates an attempt to move a transaction backward
// or out of an absorbing state.
var ErrInvalidTransition = errors.New("invalid transaction state transition")

// PixTransaction is the saga aggregate. Account ids are references by value
// only; the accounts themselves are owned by the external ledger service.
type PixTransaction struct {
	ID                   uuid.UUID                `json:"id"`
	SourceAccountID      uuid.UUID                `json:"source_account_id"`
	DestinationAccountID uuid.UUID                `json:"destination_account_id"`
	Amount               int64                    `json:"amount"` // Minor units
	PixKey               string                   `json:"pix_key"`
	Description          string                   `json:"description,omitempty"`
	IdempotencyKey       string                   `json:"idempotency_key"`
	Status               shared.TransactionStatus `json:"status"`
	FailureReason        string                   `json:"failure_reason,omitempty"`
	CorrelationID        string                   `json:"correlation_id,omitempty"`
	CreatedAt            time.Time                `json:"created_at"`
	DebitedAt            *time.Time               `json:"debited_at,omitempty"`
	CompletedAt          *time.Time               `json:"completed_at,omitempty"`
}

// New creates a transaction from a validated transfer request. The initial
// status is PENDING, or PENDING_ANALYSIS when a fraud gate precedes the saga.
func New(req *shared.TransferRequest, withAnalysis bool) (*PixTransaction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := shared.TransactionStatusPending
	if withAnalysis {
		status = shared.TransactionStatusPendingAnalysis
	}

	createdAt := req.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return &PixTransaction{
		ID:                   uuid.New(),
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		Amount:               req.Amount,
		PixKey:               req.PixKey,
		Description:          req.Description,
		IdempotencyKey:       req.IdempotencyKey,
		Status:               status,
		CorrelationID:        req.CorrelationID,
		CreatedAt:            createdAt,
	}, nil
}

// Approve moves a transaction past the fraud gate into PENDING
func (t *PixTransaction) Approve() error {
	if t.Status != shared.TransactionStatusPendingAnalysis {
		return transitionError(t.Status, shared.TransactionStatusPending)
	}
	t.Status = shared.TransactionStatusPending
	return nil
}

// MarkSourceDebited records the persisted midpoint of the saga: money has
// left the source account and must be returned on any later failure.
func (t *PixTransaction) MarkSourceDebited() error {
	if t.Status != shared.TransactionStatusPending {
		return transitionError(t.Status, shared.TransactionStatusSourceDebited)
	}
	now := time.Now().UTC()
	t.Status = shared.TransactionStatusSourceDebited
	t.DebitedAt = &now
	return nil
}

// MarkCompleted finishes a successful saga run
func (t *PixTransaction) MarkCompleted() error {
	if t.Status != shared.TransactionStatusSourceDebited {
		return transitionError(t.Status, shared.TransactionStatusCompleted)
	}
	now := time.Now().UTC()
	t.Status = shared.TransactionStatusCompleted
	t.CompletedAt = &now
	return nil
}

// MarkCompensated records a credit failure whose compensating refund
// succeeded. Only reachable from SOURCE_DEBITED.
func (t *PixTransaction) MarkCompensated(reason string) error {
	if t.Status != shared.TransactionStatusSourceDebited {
		return transitionError(t.Status, shared.TransactionStatusCompensated)
	}
	now := time.Now().UTC()
	t.Status = shared.TransactionStatusCompensated
	t.FailureReason = reason
	t.CompletedAt = &now
	return nil
}

// MarkFailed moves the transaction to FAILED from any non-terminal state
func (t *PixTransaction) MarkFailed(reason string) error {
	if t.Status.IsTerminal() {
		return transitionError(t.Status, shared.TransactionStatusFailed)
	}
	now := time.Now().UTC()
	t.Status = shared.TransactionStatusFailed
	t.FailureReason = reason
	t.CompletedAt = &now
	return nil
}

func transitionError(from, to shared.TransactionStatus) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
