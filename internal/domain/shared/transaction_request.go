package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrSameAccount        = errors.New("source and destination accounts must differ")
	ErrMissingPixKey      = errors.New("pix key is required")
	ErrPixKeyTooLong      = errors.New("pix key exceeds maximum length")
	ErrMissingIdempotency = errors.New("idempotency key is required")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")
)

const (
	// MaxPixKeyLength bounds the opaque destination payment address
	MaxPixKeyLength = 140
	// MaxDescriptionLength bounds the optional free-text field
	MaxDescriptionLength = 255
)

// TransferRequest is the inbound shape of a transfer submission. Amounts are
// in minor units (cents); the deployment is single-currency.
type TransferRequest struct {
	SourceAccountID      uuid.UUID `json:"source_account_id"`
	DestinationAccountID uuid.UUID `json:"destination_account_id"`
	Amount               int64     `json:"amount"`
	PixKey               string    `json:"pix_key"`
	Description          string    `json:"description,omitempty"`
	IdempotencyKey       string    `json:"idempotency_key"`
	CorrelationID        string    `json:"correlation_id,omitempty"`
	Timestamp            time.Time `json:"timestamp"`
}

// Validate checks the request shape. Validation failures never touch storage.
func (r *TransferRequest) Validate() error {
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	if r.SourceAccountID == r.DestinationAccountID {
		return ErrSameAccount
	}
	if r.PixKey == "" {
		return ErrMissingPixKey
	}
	if len(r.PixKey) > MaxPixKeyLength {
		return ErrPixKeyTooLong
	}
	if r.IdempotencyKey == "" {
		return ErrMissingIdempotency
	}
	if len(r.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}
