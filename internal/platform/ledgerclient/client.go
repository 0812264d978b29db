// Package ledgerclient talks to the external account-of-record service that
// executes debits and credits. The saga never sees transport errors: every
// failure, business or network, comes back as an unsuccessful result so the
// orchestrator's control flow stays uniform.
package ledgerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/config"
)

// OperationResult is the outcome of a single debit or credit call
type OperationResult struct {
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	NewBalance int64  `json:"new_balance"`
}

// AccountOperations abstracts the remote ledger's debit/credit surface
type AccountOperations interface {
	Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string) *OperationResult
	Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string) *OperationResult
}

// Client implements AccountOperations over the ledger's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a ledger client with a bounded per-call timeout
func NewClient(logger *slog.Logger, cfg *config.LedgerConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type operationRequest struct {
	Amount int64  `json:"amount"`
	Reason string `json:"reason"`
}

// Debit removes amount from the account. The reason string carries the
// transaction id for traceability on the ledger side.
func (c *Client) Debit(ctx context.Context, accountID uuid.UUID, amount int64, reason string) *OperationResult {
	return c.execute(ctx, accountID, "debit", amount, reason)
}

// Credit adds amount to the account
func (c *Client) Credit(ctx context.Context, accountID uuid.UUID, amount int64, reason string) *OperationResult {
	return c.execute(ctx, accountID, "credit", amount, reason)
}

func (c *Client) execute(ctx context.Context, accountID uuid.UUID, operation string, amount int64, reason string) *OperationResult {
	url := fmt.Sprintf("%s/api/v1/accounts/%s/%s", c.baseURL, accountID.String(), operation)

	body, err := json.Marshal(operationRequest{Amount: amount, Reason: reason})
	if err != nil {
		return failure(fmt.Sprintf("failed to marshal %s request: %v", operation, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(fmt.Sprintf("failed to build %s request: %v", operation, err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Ledger call failed",
			"operation", operation,
			"account_id", accountID.String(),
			"error", err,
		)
		return failure(fmt.Sprintf("ledger %s call failed: %v", operation, err))
	}
	defer resp.Body.Close()

	var result OperationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("Failed to decode ledger response",
			"operation", operation,
			"account_id", accountID.String(),
			"status", resp.StatusCode,
			"error", err,
		)
		return failure(fmt.Sprintf("failed to decode ledger %s response (status %d): %v", operation, resp.StatusCode, err))
	}

	if resp.StatusCode != http.StatusOK && result.Error == "" {
		result.Success = false
		result.Error = fmt.Sprintf("ledger %s rejected with status %d", operation, resp.StatusCode)
	}

	c.logger.Debug("Ledger call completed",
		"operation", operation,
		"account_id", accountID.String(),
		"success", result.Success,
	)

	return &result
}

func failure(message string) *OperationResult {
	return &OperationResult{Success: false, Error: message}
}
