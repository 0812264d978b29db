// Package boleto models the time-delayed payment instrument that settles
// asynchronously: a paid boleto stays PROCESSING until the clearing window
// elapses, then the settlement worker confirms it.
package boleto

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/shared"
)

var (
	ErrInvalidAmount   = errors.New("boleto amount must be positive")
	ErrAlreadySettled  = errors.New("boleto is already confirmed")
	ErrNotYetSettlable = errors.New("boleto settlement delay has not elapsed")
)

// Boleto is a settleable instrument. Only the settlement worker mutates a
// paid boleto, and only once its delay since PaidAt has elapsed.
type Boleto struct {
	ID          uuid.UUID           `json:"id"`
	ExternalID  string              `json:"external_id"`
	Amount      int64               `json:"amount"` // Minor units
	Status      shared.BoletoStatus `json:"status"`
	WebhookURL  string              `json:"webhook_url,omitempty"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
	ConfirmedAt *time.Time          `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewPaid creates a boleto that has just been paid and now waits out the
// clearing window in PROCESSING.
func NewPaid(externalID string, amount int64, webhookURL string) (*Boleto, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now().UTC()
	return &Boleto{
		ID:         uuid.New(),
		ExternalID: externalID,
		Amount:     amount,
		Status:     shared.BoletoStatusProcessing,
		WebhookURL: webhookURL,
		PaidAt:     &now,
		CreatedAt:  now,
	}, nil
}

// SettleableAt returns the instant the clearing window closes
func (b *Boleto) SettleableAt(delay time.Duration) time.Time {
	if b.PaidAt == nil {
		return time.Time{}
	}
	return b.PaidAt.Add(delay)
}

// Confirm settles the instrument. It rewrites status out of PROCESSING, so
// the worker can never double-confirm across ticks.
func (b *Boleto) Confirm(now time.Time, delay time.Duration) error {
	if b.Status == shared.BoletoStatusConfirmed {
		return ErrAlreadySettled
	}
	if b.PaidAt == nil || now.Before(b.SettleableAt(delay)) {
		return ErrNotYetSettlable
	}

	confirmedAt := now.UTC()
	b.Status = shared.BoletoStatusConfirmed
	b.ConfirmedAt = &confirmedAt
	return nil
}
