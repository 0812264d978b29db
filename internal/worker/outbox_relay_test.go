package worker

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pix-transfer-service/internal/config"
	"github.com/pix-transfer-service/internal/domain/outbox"
	"github.com/pix-transfer-service/internal/domain/shared"
	"github.com/pix-transfer-service/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeOutboxStore struct {
	messages  []*outbox.Message
	processed map[int64]bool
	retries   map[int64]int
	listErr   error
}

func newFakeOutboxStore(messages ...*outbox.Message) *fakeOutboxStore {
	for i, m := range messages {
		m.ID = int64(i + 1)
	}
	return &fakeOutboxStore{
		messages:  messages,
		processed: make(map[int64]bool),
		retries:   make(map[int64]int),
	}
}

func (f *fakeOutboxStore) Create(ctx context.Context, message *outbox.Message) error {
	message.ID = int64(len(f.messages) + 1)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeOutboxStore) ListUnprocessed(ctx context.Context, batchSize int) ([]*outbox.Message, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var pending []*outbox.Message
	for _, m := range f.messages {
		if !f.processed[m.ID] {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func (f *fakeOutboxStore) MarkProcessed(ctx context.Context, id int64) error {
	f.processed[id] = true
	return nil
}

func (f *fakeOutboxStore) IncrementRetry(ctx context.Context, id int64) error {
	f.retries[id]++
	return nil
}

func (f *fakeOutboxStore) WithTx(tx pgx.Tx) outbox.Repository { return f }

type publishedMessage struct {
	key   string
	value []byte
}

type fakePublisher struct {
	published []publishedMessage
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, key string, value []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedMessage{key: key, value: value})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeAlerter struct {
	alerts  []publishedMessage
	reasons []string
	err     error
}

func (f *fakeAlerter) PublishAlert(ctx context.Context, key string, eventValue []byte, reason string) error {
	if f.err != nil {
		return f.err
	}
	f.alerts = append(f.alerts, publishedMessage{key: key, value: eventValue})
	f.reasons = append(f.reasons, reason)
	return nil
}

func (f *fakeAlerter) Close() error { return nil }

func newRelay(store *fakeOutboxStore, events *fakePublisher, alerts *fakeAlerter) *OutboxRelay {
	cfg := &config.OutboxConfig{
		PollingInterval:  10 * time.Millisecond,
		BatchSize:        50,
		MaxRetryAttempts: 3,
	}
	// A typed nil in the interface would defeat the relay's nil check
	if alerts == nil {
		return NewOutboxRelay(cfg, store, events, nil, testLogger())
	}
	return NewOutboxRelay(cfg, store, events, alerts, testLogger())
}

func completedMessage(t *testing.T) *outbox.Message {
	t.Helper()
	txn := newTestTransaction(t)
	require.NoError(t, txn.MarkSourceDebited())
	require.NoError(t, txn.MarkCompleted())
	msg, err := outbox.NewTransferMessage(shared.EventTypeTransferCompleted, txn, false, false)
	require.NoError(t, err)
	return msg
}

func interventionMessage(t *testing.T) *outbox.Message {
	t.Helper()
	txn := newTestTransaction(t)
	require.NoError(t, txn.MarkSourceDebited())
	require.NoError(t, txn.MarkFailed("credit failed; compensation failed: ledger unavailable"))
	msg, err := outbox.NewTransferMessage(shared.EventTypeTransferFailed, txn, false, true)
	require.NoError(t, err)
	return msg
}

func newTestTransaction(t *testing.T) *transaction.PixTransaction {
	t.Helper()
	txn, err := transaction.New(&shared.TransferRequest{
		SourceAccountID:      uuid.New(),
		DestinationAccountID: uuid.New(),
		Amount:               5000,
		PixKey:               "dest@bank.example",
		IdempotencyKey:       uuid.New().String(),
		CorrelationID:        "corr-7",
	}, false)
	require.NoError(t, err)
	return txn
}

func TestOutboxRelay_ProcessPendingMessages(t *testing.T) {
	ctx := context.Background()
	msg := completedMessage(t)
	store := newFakeOutboxStore(msg)
	events := &fakePublisher{}
	relay := newRelay(store, events, nil)

	require.NoError(t, relay.processPendingMessages(ctx))

	require.Len(t, events.published, 1)
	event, err := msg.TransferEvent()
	require.NoError(t, err)
	assert.Equal(t, event.TransactionID.String(), events.published[0].key)
	assert.True(t, store.processed[msg.ID])
	assert.Zero(t, store.retries[msg.ID])
}

func TestOutboxRelay_PublishFailureIncrementsRetry(t *testing.T) {
	ctx := context.Background()
	msg := completedMessage(t)
	store := newFakeOutboxStore(msg)
	events := &fakePublisher{err: errors.New("broker unavailable")}
	relay := newRelay(store, events, nil)

	require.NoError(t, relay.processPendingMessages(ctx))

	assert.False(t, store.processed[msg.ID])
	assert.Equal(t, 1, store.retries[msg.ID])
}

func TestOutboxRelay_InterventionEventAlsoAlerts(t *testing.T) {
	ctx := context.Background()
	msg := interventionMessage(t)
	store := newFakeOutboxStore(msg)
	events := &fakePublisher{}
	alerts := &fakeAlerter{}
	relay := newRelay(store, events, alerts)

	require.NoError(t, relay.processPendingMessages(ctx))

	require.Len(t, events.published, 1)
	require.Len(t, alerts.alerts, 1)
	assert.Equal(t, events.published[0].key, alerts.alerts[0].key)
	assert.Contains(t, alerts.reasons[0], "compensation failed")
	assert.True(t, store.processed[msg.ID])
}

func TestOutboxRelay_AlertFailureKeepsMessagePending(t *testing.T) {
	ctx := context.Background()
	msg := interventionMessage(t)
	store := newFakeOutboxStore(msg)
	events := &fakePublisher{}
	alerts := &fakeAlerter{err: errors.New("broker unavailable")}
	relay := newRelay(store, events, alerts)

	require.NoError(t, relay.processPendingMessages(ctx))

	assert.False(t, store.processed[msg.ID])
	assert.Equal(t, 1, store.retries[msg.ID])
}

func TestOutboxRelay_CompletedEventNeverAlerts(t *testing.T) {
	ctx := context.Background()
	msg := completedMessage(t)
	store := newFakeOutboxStore(msg)
	events := &fakePublisher{}
	alerts := &fakeAlerter{}
	relay := newRelay(store, events, alerts)

	require.NoError(t, relay.processPendingMessages(ctx))

	assert.Len(t, events.published, 1)
	assert.Empty(t, alerts.alerts)
}

func TestOutboxRelay_StartStopsOnContextCancel(t *testing.T) {
	store := newFakeOutboxStore(completedMessage(t))
	events := &fakePublisher{}
	relay := newRelay(store, events, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after context cancellation")
	}

	assert.NotEmpty(t, events.published)
}
