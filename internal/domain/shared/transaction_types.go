package shared

// TransactionStatus defines the states of the transfer saga state machine.
// COMPLETED, COMPENSATED and FAILED are absorbing.
type TransactionStatus string

const (
	TransactionStatusPendingAnalysis TransactionStatus = "PENDING_ANALYSIS"
	TransactionStatusPending         TransactionStatus = "PENDING"
	TransactionStatusSourceDebited   TransactionStatus = "SOURCE_DEBITED"
	TransactionStatusCompleted       TransactionStatus = "COMPLETED"
	TransactionStatusFailed          TransactionStatus = "FAILED"
	TransactionStatusCompensated     TransactionStatus = "COMPENSATED"
)

// IsTerminal reports whether the status is absorbing
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed || s == TransactionStatusCompensated
}

// EventType discriminates integration events written to the outbox
type EventType string

const (
	EventTypeTransferInitiated EventType = "pix.transfer.initiated"
	EventTypeTransferCompleted EventType = "pix.transfer.completed"
	EventTypeTransferFailed    EventType = "pix.transfer.failed"
)

// BoletoStatus defines settlement states for boleto instruments
type BoletoStatus string

const (
	BoletoStatusProcessing BoletoStatus = "PROCESSING"
	BoletoStatusConfirmed  BoletoStatus = "CONFIRMED"
)

// FraudDecision is the opaque verdict returned by the fraud provider
type FraudDecision string

const (
	FraudDecisionApproved    FraudDecision = "APPROVED"
	FraudDecisionRejected    FraudDecision = "REJECTED"
	FraudDecisionUnderReview FraudDecision = "UNDER_REVIEW"
)

// ErrorKind categorizes saga failures for callers and the HTTP layer
type ErrorKind string

const (
	ErrorKindValidation          ErrorKind = "VALIDATION"
	ErrorKindRemoteStep          ErrorKind = "REMOTE_STEP"
	ErrorKindCompensationFailure ErrorKind = "COMPENSATION_FAILURE"
	ErrorKindNotFound            ErrorKind = "NOT_FOUND"
	ErrorKindInternal            ErrorKind = "INTERNAL"
)
