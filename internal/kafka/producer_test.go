package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func TestNotifyKeysByTransaction(t *testing.T) {
	writer := new(MockWriter)
	var captured []kafka.Message
	writer.On("WriteMessages", mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(0).([]kafka.Message)
	}).Return(nil)

	p := &Producer{Writer: writer, Topic: "ticketing.transactions.status", Logger: logger.Nop()}
	evt := models.TransactionStatusEvent{
		Type:          "TRANSACTION_ACCEPTED",
		TransactionID: "tx-42",
		Status:        models.StatusDone,
		OccurredAt:    time.Now(),
	}

	require.NoError(t, p.Notify(context.Background(), evt))
	require.Len(t, captured, 1)
	assert.Equal(t, "tx-42", string(captured[0].Key))
	assert.Equal(t, "TRANSACTION_ACCEPTED", string(captured[0].Headers[0].Value))

	var decoded models.TransactionStatusEvent
	require.NoError(t, json.Unmarshal(captured[0].Value, &decoded))
	assert.Equal(t, models.StatusDone, decoded.Status)
}

func TestNotifyReturnsWriteError(t *testing.T) {
	writer := new(MockWriter)
	writer.On("WriteMessages", mock.Anything).Return(errors.New("leader not available"))

	p := &Producer{Writer: writer, Topic: "t", Logger: logger.Nop()}
	err := p.Notify(context.Background(), models.TransactionStatusEvent{Type: "TRANSACTION_CREATED", TransactionID: "tx-1"})

	assert.ErrorContains(t, err, "leader not available")
}
