// Package fraudclient integrates the optional fraud decision provider. The
// saga treats the decision as an opaque gate: REJECTED short-circuits before
// any debit, everything else lets the transfer proceed.
package fraudclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
)

// Analysis is the provider's verdict on a transfer
type Analysis struct {
	Score    float64              `json:"score"`
	Decision shared.FraudDecision `json:"decision"`
	RuleHits []string             `json:"rule_hits,omitempty"`
}

// Analyzer scores a transaction before the saga debits the source
type Analyzer interface {
	Analyze(ctx context.Context, txn *transaction.PixTransaction) (*Analysis, error)
}

// Client implements Analyzer over the provider's HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a fraud client with a bounded per-call timeout
func NewClient(logger *slog.Logger, cfg *config.FraudConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type analyzeRequest struct {
	TransactionID        uuid.UUID `json:"transaction_id"`
	SourceAccountID      uuid.UUID `json:"source_account_id"`
	DestinationAccountID uuid.UUID `json:"destination_account_id"`
	Amount               int64     `json:"amount"`
	PixKey               string    `json:"pix_key"`
}

// Analyze submits the transaction for scoring
func (c *Client) Analyze(ctx context.Context, txn *transaction.PixTransaction) (*Analysis, error) {
	body, err := json.Marshal(analyzeRequest{
		TransactionID:        txn.ID,
		SourceAccountID:      txn.SourceAccountID,
		DestinationAccountID: txn.DestinationAccountID,
		Amount:               txn.Amount,
		PixKey:               txn.PixKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analyze request: %w", err)
	}

	url := c.baseURL + "/api/v1/analyze"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fraud analyze call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fraud provider rejected analyze call with status %d", resp.StatusCode)
	}

	var analysis Analysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		return nil, fmt.Errorf("failed to decode fraud analysis: %w", err)
	}

	c.logger.Debug("Fraud analysis completed",
		"transaction_id", txn.ID.String(),
		"decision", string(analysis.Decision),
		"score", analysis.Score,
		"rule_hits", len(analysis.RuleHits),
	)

	return &analysis, nil
}
