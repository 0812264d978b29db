package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pix-transfer-service/internal/domain/boleto"
)

// Notifier delivers settlement notifications
type Notifier interface {
	Notify(b *boleto.Boleto)
}

// WebhookNotifier posts settlement confirmations to merchant webhooks on a
// bounded worker pool. Delivery is fire-and-forget: a failed webhook is
// logged and dropped, it never blocks or reverses a settlement.
type WebhookNotifier struct {
	pool       *ants.Pool
	httpClient *http.Client
	logger     *slog.Logger
}

// NewWebhookNotifier creates a notifier with poolSize concurrent deliveries
func NewWebhookNotifier(logger *slog.Logger, poolSize int, timeout time.Duration) (*WebhookNotifier, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	return &WebhookNotifier{
		pool: pool,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}, nil
}

type settlementNotification struct {
	BoletoID    string     `json:"boleto_id"`
	ExternalID  string     `json:"external_id"`
	Amount      int64      `json:"amount"`
	Status      string     `json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// Notify submits the delivery to the pool and returns immediately. Boletos
// without a webhook URL are skipped.
func (n *WebhookNotifier) Notify(b *boleto.Boleto) {
	if b.WebhookURL == "" {
		return
	}

	// Copy so the delivery does not race the caller's batch loop
	notification := settlementNotification{
		BoletoID:    b.ID.String(),
		ExternalID:  b.ExternalID,
		Amount:      b.Amount,
		Status:      string(b.Status),
		ConfirmedAt: b.ConfirmedAt,
	}
	url := b.WebhookURL

	err := n.pool.Submit(func() {
		n.deliver(url, &notification)
	})
	if err != nil {
		n.logger.Error("Failed to submit webhook delivery to worker pool",
			"boleto_id", notification.BoletoID,
			"error", err,
		)
	}
}

func (n *WebhookNotifier) deliver(url string, notification *settlementNotification) {
	body, err := json.Marshal(notification)
	if err != nil {
		n.logger.Error("Failed to marshal webhook payload", "boleto_id", notification.BoletoID, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Failed to build webhook request", "boleto_id", notification.BoletoID, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Error("Webhook delivery failed",
			"boleto_id", notification.BoletoID,
			"url", url,
			"error", err,
		)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		n.logger.Error("Webhook delivery rejected",
			"boleto_id", notification.BoletoID,
			"url", url,
			"status", resp.StatusCode,
		)
		return
	}

	n.logger.Debug("Webhook delivered",
		"boleto_id", notification.BoletoID,
		"status", resp.StatusCode,
	)
}

// Running returns the number of in-flight deliveries
func (n *WebhookNotifier) Running() int {
	return n.pool.Running()
}

// Shutdown releases the worker pool
func (n *WebhookNotifier) Shutdown() {
	n.logger.Info("Shutting down webhook notifier", "running_deliveries", n.pool.Running())
	n.pool.Release()
}
