// Package outbox implements the transactional outbox: integration events are
// written in the same durable unit of work as the state change they describe,
// so no event is ever lost between a commit and its broker publish.
package outbox

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
)

// Message is a self-contained, independently durable integration event.
// ProcessedOn stays nil until the relay publishes the event downstream.
type Message struct {
	ID          int64            `json:"id"`
	Type        shared.EventType `json:"type"`
	Content     json.RawMessage  `json:"content"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedOn *time.Time       `json:"processed_on,omitempty"`
	RetryCount  int              `json:"retry_count"`
}

// TransferEvent is the payload carried by every transfer integration event
type TransferEvent struct {
	TransactionID         uuid.UUID  `json:"transaction_id"`
	SourceAccountID       uuid.UUID  `json:"source_account_id"`
	DestinationAccountID  uuid.UUID  `json:"destination_account_id"`
	Amount                int64      `json:"amount"`
	PixKey                string     `json:"pix_key"`
	Status                string     `json:"status"`
	Reason                string     `json:"reason,omitempty"`
	CompensationSucceeded bool       `json:"compensation_succeeded,omitempty"`
	ManualIntervention    bool       `json:"manual_intervention,omitempty"`
	CorrelationID         string     `json:"correlation_id,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
	OccurredAt            time.Time  `json:"occurred_at"`
	DebitedAt             *time.Time `json:"debited_at,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
}

// NewTransferMessage builds an outbox message from a transaction snapshot.
// compensationSucceeded and manualIntervention only apply to failure events.
func NewTransferMessage(eventType shared.EventType, txn *transaction.PixTransaction, compensationSucceeded, manualIntervention bool) (*Message, error) {
	event := TransferEvent{
		TransactionID:         txn.ID,
		SourceAccountID:       txn.SourceAccountID,
		DestinationAccountID:  txn.DestinationAccountID,
		Amount:                txn.Amount,
		PixKey:                txn.PixKey,
		Status:                string(txn.Status),
		Reason:                txn.FailureReason,
		CompensationSucceeded: compensationSucceeded,
		ManualIntervention:    manualIntervention,
		CorrelationID:         txn.CorrelationID,
		CreatedAt:             txn.CreatedAt,
		OccurredAt:            time.Now().UTC(),
		DebitedAt:             txn.DebitedAt,
		CompletedAt:           txn.CompletedAt,
	}

	content, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      eventType,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// TransferEvent decodes the payload back into its event form
func (m *Message) TransferEvent() (*TransferEvent, error) {
	var event TransferEvent
	if err := json.Unmarshal(m.Content, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// RequiresIntervention reports whether the event must reach the alert
// channel in addition to the normal event stream.
func (m *Message) RequiresIntervention() bool {
	if m.Type != shared.EventTypeTransferFailed {
		return false
	}
	event, err := m.TransferEvent()
	if err != nil {
		return false
	}
	return event.ManualIntervention
}

// ErrMessageNotFound indicates a missing outbox message
type ErrMessageNotFound struct {
	ID int64
}

func (e ErrMessageNotFound) Error() string {
	return "outbox message not found: " + strconv.FormatInt(e.ID, 10)
}

// Is implements the errors.Is interface for ErrMessageNotFound
func (e ErrMessageNotFound) Is(target error) bool {
	_, ok := target.(ErrMessageNotFound)
	return ok
}
