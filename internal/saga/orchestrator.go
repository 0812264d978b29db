// Package saga orchestrates the synchronous transfer saga: debit the source
// account on the external ledger, credit the destination, and compensate the
// debit when the credit fails. Every state transition commits together with
// its outbox event, and the idempotency key's unique index arbitrates
// concurrent duplicate submissions.
package saga

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/domain/outbox"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/pix-transfer-service/internal/platform/fraudclient"
	"github.com/pix-transfer-service/internal/platform/ledgerclient"
)

// TransferOutcome is the result of a saga run. Transaction always carries the
// final persisted record; ErrorKind is empty when the transfer completed.
type TransferOutcome struct {
	Transaction *transaction.PixTransaction
	Duplicate   bool
	ErrorKind   shared.ErrorKind
	Message     string
}

// Succeeded reports whether the transfer reached COMPLETED
func (o *TransferOutcome) Succeeded() bool {
	return o.Transaction != nil && o.Transaction.Status == shared.TransactionStatusCompleted
}

// Orchestrator drives a transfer from request to terminal state. One instance
// is shared across requests; all per-transfer state lives in the transaction
// record.
type Orchestrator struct {
	logger       *slog.Logger
	db           UnitOfWork
	transactions transaction.Repository
	outboxRepo   outbox.Repository
	ledger       ledgerclient.AccountOperations
	fraud        fraudclient.Analyzer
}

// NewOrchestrator creates a transfer orchestrator. fraud may be nil, in which
// case transfers skip the analysis gate and start in PENDING.
func NewOrchestrator(
	logger *slog.Logger,
	db UnitOfWork,
	transactions transaction.Repository,
	outboxRepo outbox.Repository,
	ledger ledgerclient.AccountOperations,
	fraud fraudclient.Analyzer,
) *Orchestrator {
	return &Orchestrator{
		logger:       logger,
		db:           db,
		transactions: transactions,
		outboxRepo:   outboxRepo,
		ledger:       ledger,
		fraud:        fraud,
	}
}

// ProcessTransfer runs the saga to a terminal state. Resubmissions with a
// known idempotency key return the original record without touching the
// ledger again, whatever state that record is in.
func (o *Orchestrator) ProcessTransfer(ctx context.Context, req *shared.TransferRequest) (*TransferOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := o.transactions.FindByIdempotencyKey(ctx, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		o.logger.Info("Duplicate transfer submission",
			"transaction_id", existing.ID.String(),
			"idempotency_key", req.IdempotencyKey,
			"status", string(existing.Status),
		)
		return o.outcomeFor(existing, true), nil
	}

	txn, err := transaction.New(req, o.fraud != nil)
	if err != nil {
		return nil, err
	}

	if err := o.createWithEvent(ctx, txn); err != nil {
		if errors.Is(err, transaction.ErrDuplicateIdempotencyKey{}) {
			// Lost the insert race against a concurrent duplicate. The winner's
			// record is the answer for this key.
			winner, lookupErr := o.transactions.FindByIdempotencyKey(ctx, req.IdempotencyKey)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if winner == nil {
				return nil, fmt.Errorf("duplicate idempotency key %q but no winning record found", req.IdempotencyKey)
			}
			return o.outcomeFor(winner, true), nil
		}
		return nil, err
	}

	o.logger.Info("Transfer initiated",
		"transaction_id", txn.ID.String(),
		"source_account_id", txn.SourceAccountID.String(),
		"destination_account_id", txn.DestinationAccountID.String(),
		"amount", txn.Amount,
		"correlation_id", txn.CorrelationID,
	)

	if o.fraud != nil {
		outcome, done, err := o.runAnalysisGate(ctx, txn)
		if err != nil {
			return nil, err
		}
		if done {
			return outcome, nil
		}
	}

	return o.runTransferSteps(ctx, txn)
}

// runAnalysisGate scores the transfer before any money moves. A REJECTED
// verdict fails the transfer; provider errors fail open because blocking
// payments on an auxiliary system's availability is the worse failure mode.
func (o *Orchestrator) runAnalysisGate(ctx context.Context, txn *transaction.PixTransaction) (*TransferOutcome, bool, error) {
	analysis, err := o.fraud.Analyze(ctx, txn)
	if err != nil {
		o.logger.Warn("Fraud analysis unavailable, failing open",
			"transaction_id", txn.ID.String(),
			"error", err,
		)
	} else if analysis.Decision == shared.FraudDecisionRejected {
		reason := fmt.Sprintf("rejected by fraud analysis (score %.2f)", analysis.Score)
		if err := txn.MarkFailed(reason); err != nil {
			return nil, false, err
		}
		if err := o.updateWithEvent(ctx, txn, shared.EventTypeTransferFailed, false, false); err != nil {
			return nil, false, err
		}
		o.logger.Info("Transfer rejected by fraud analysis",
			"transaction_id", txn.ID.String(),
			"score", analysis.Score,
			"rule_hits", analysis.RuleHits,
		)
		return o.outcomeFor(txn, false), true, nil
	}

	if err := txn.Approve(); err != nil {
		return nil, false, err
	}
	if err := o.transactions.Update(ctx, txn); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// runTransferSteps executes debit, credit and, when needed, compensation.
// The SOURCE_DEBITED persist between the two ledger calls is what makes the
// debt to the source account recoverable after a crash.
func (o *Orchestrator) runTransferSteps(ctx context.Context, txn *transaction.PixTransaction) (*TransferOutcome, error) {
	reference := txn.ID.String()

	debit := o.ledger.Debit(ctx, txn.SourceAccountID, txn.Amount, reference)
	if !debit.Success {
		reason := fmt.Sprintf("debit failed: %s", debit.Error)
		if err := txn.MarkFailed(reason); err != nil {
			return nil, err
		}
		if err := o.updateWithEvent(ctx, txn, shared.EventTypeTransferFailed, false, false); err != nil {
			return nil, err
		}
		o.logger.Info("Transfer failed at debit",
			"transaction_id", txn.ID.String(),
			"reason", debit.Error,
		)
		return o.outcomeFor(txn, false), nil
	}

	if err := txn.MarkSourceDebited(); err != nil {
		return nil, err
	}
	if err := o.transactions.Update(ctx, txn); err != nil {
		return nil, err
	}

	credit := o.ledger.Credit(ctx, txn.DestinationAccountID, txn.Amount, reference)
	if credit.Success {
		if err := txn.MarkCompleted(); err != nil {
			return nil, err
		}
		if err := o.updateWithEvent(ctx, txn, shared.EventTypeTransferCompleted, false, false); err != nil {
			return nil, err
		}
		o.logger.Info("Transfer completed",
			"transaction_id", txn.ID.String(),
			"amount", txn.Amount,
		)
		return o.outcomeFor(txn, false), nil
	}

	return o.compensate(ctx, txn, credit.Error)
}

// compensate returns the debited amount to the source account after a failed
// credit. The refund is attempted exactly once; a failed refund leaves the
// record FAILED and flags the event for manual intervention.
func (o *Orchestrator) compensate(ctx context.Context, txn *transaction.PixTransaction, creditError string) (*TransferOutcome, error) {
	reference := txn.ID.String()
	reason := fmt.Sprintf("credit failed: %s", creditError)

	refund := o.ledger.Credit(ctx, txn.SourceAccountID, txn.Amount, reference)
	if refund.Success {
		if err := txn.MarkCompensated(reason); err != nil {
			return nil, err
		}
		if err := o.updateWithEvent(ctx, txn, shared.EventTypeTransferFailed, true, false); err != nil {
			return nil, err
		}
		o.logger.Info("Transfer compensated",
			"transaction_id", txn.ID.String(),
			"reason", creditError,
		)
		return o.outcomeFor(txn, false), nil
	}

	if err := txn.MarkFailed(fmt.Sprintf("%s; compensation failed: %s", reason, refund.Error)); err != nil {
		return nil, err
	}
	if err := o.updateWithEvent(ctx, txn, shared.EventTypeTransferFailed, false, true); err != nil {
		return nil, err
	}
	o.logger.Error("Compensation failed, manual intervention required",
		"transaction_id", txn.ID.String(),
		"source_account_id", txn.SourceAccountID.String(),
		"amount", txn.Amount,
		"credit_error", creditError,
		"refund_error", refund.Error,
	)
	return o.outcomeFor(txn, false), nil
}

// createWithEvent inserts the new transaction and its initiated event in one
// commit, so the record and the event cannot diverge.
func (o *Orchestrator) createWithEvent(ctx context.Context, txn *transaction.PixTransaction) error {
	return o.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := o.transactions.WithTx(tx).Add(ctx, txn); err != nil {
			return err
		}
		message, err := outbox.NewTransferMessage(shared.EventTypeTransferInitiated, txn, false, false)
		if err != nil {
			return err
		}
		return o.outboxRepo.WithTx(tx).Create(ctx, message)
	})
}

// updateWithEvent persists a terminal transition and its event atomically
func (o *Orchestrator) updateWithEvent(ctx context.Context, txn *transaction.PixTransaction, eventType shared.EventType, compensationSucceeded, manualIntervention bool) error {
	return o.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		if err := o.transactions.WithTx(tx).Update(ctx, txn); err != nil {
			return err
		}
		message, err := outbox.NewTransferMessage(eventType, txn, compensationSucceeded, manualIntervention)
		if err != nil {
			return err
		}
		return o.outboxRepo.WithTx(tx).Create(ctx, message)
	})
}

func (o *Orchestrator) outcomeFor(txn *transaction.PixTransaction, duplicate bool) *TransferOutcome {
	outcome := &TransferOutcome{
		Transaction: txn,
		Duplicate:   duplicate,
	}

	switch txn.Status {
	case shared.TransactionStatusCompleted:
		// No error kind on success
	case shared.TransactionStatusCompensated:
		outcome.ErrorKind = shared.ErrorKindRemoteStep
		outcome.Message = txn.FailureReason
	case shared.TransactionStatusFailed:
		outcome.ErrorKind = shared.ErrorKindRemoteStep
		if txn.DebitedAt != nil {
			outcome.ErrorKind = shared.ErrorKindCompensationFailure
		}
		outcome.Message = txn.FailureReason
	default:
		// A duplicate submission can surface a still-running transfer
	}

	return outcome
}
