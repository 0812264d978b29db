package fraudclient

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTransaction(t *testing.T) *transaction.PixTransaction {
	t.Helper()
	txn, err := transaction.New(&shared.TransferRequest{
		SourceAccountID:      uuid.New(),
		DestinationAccountID: uuid.New(),
		Amount:               99900,
		PixKey:               "dest@bank.example",
		IdempotencyKey:       uuid.New().String(),
	}, true)
	require.NoError(t, err)
	return txn
}

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewClient(logger, &config.FraudConfig{Enabled: true, BaseURL: baseURL, Timeout: time.Second})
}

func TestClient_Analyze(t *testing.T) {
	txn := testTransaction(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/analyze", r.URL.Path)

		var req analyzeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, txn.ID, req.TransactionID)
		assert.Equal(t, txn.Amount, req.Amount)

		json.NewEncoder(w).Encode(Analysis{
			Score:    0.91,
			Decision: shared.FraudDecisionRejected,
			RuleHits: []string{"velocity", "new-destination"},
		})
	}))
	defer server.Close()

	analysis, err := newTestClient(server.URL).Analyze(context.Background(), txn)
	require.NoError(t, err)

	assert.Equal(t, shared.FraudDecisionRejected, analysis.Decision)
	assert.InDelta(t, 0.91, analysis.Score, 0.001)
	assert.Len(t, analysis.RuleHits, 2)
}

func TestClient_Analyze_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	analysis, err := newTestClient(server.URL).Analyze(context.Background(), testTransaction(t))
	assert.Error(t, err)
	assert.Nil(t, analysis)
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_Analyze_NetworkError(t *testing.T) {
	analysis, err := newTestClient("http://127.0.0.1:1").Analyze(context.Background(), testTransaction(t))
	assert.Error(t, err)
	assert.Nil(t, analysis)
}
