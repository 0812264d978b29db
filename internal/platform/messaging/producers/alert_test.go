package producers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertProducer_PublishAlert(t *testing.T) {
	writer := &mockWriter{}
	producer := &AlertProducer{logger: testLogger(), writer: writer, alertTopic: "pix_transfer_alerts"}

	eventValue := []byte(`{"transaction_id":"abc","manual_intervention":true}`)
	err := producer.PublishAlert(context.Background(), "abc", eventValue, "compensation failed")
	require.NoError(t, err)

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, []byte("abc"), msg.Key)

	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "alert-reason", msg.Headers[0].Key)
	assert.Equal(t, "compensation failed", string(msg.Headers[0].Value))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "abc", payload["transaction_id"])
	assert.Equal(t, "compensation failed", payload["reason"])
	assert.JSONEq(t, string(eventValue), payload["event"])
	assert.NotEmpty(t, payload["timestamp"])
}

func TestAlertProducer_PublishAlertError(t *testing.T) {
	writer := &mockWriter{writeErr: errors.New("broker unavailable")}
	producer := &AlertProducer{logger: testLogger(), writer: writer, alertTopic: "pix_transfer_alerts"}

	err := producer.PublishAlert(context.Background(), "abc", []byte(`{}`), "compensation failed")
	assert.Error(t, err)
}

func TestAlertProducer_NilSafe(t *testing.T) {
	var producer *AlertProducer

	assert.Error(t, producer.PublishAlert(context.Background(), "abc", nil, "x"))
	assert.NoError(t, producer.Close())
}
