package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/crm-followup/internal/usecase"
)

type MockChannel struct {
	mock.Mock
}

func (m *MockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestProducer_PublishCycleReport(t *testing.T) {
	ch := new(MockChannel)
	producer := NewProducer(ch)
	report := usecase.CycleReport{
		CycleID:    "c-1",
		StartedAt:  time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2024, 1, 10, 9, 0, 5, 0, time.UTC),
		Attempted:  3,
		Succeeded:  2,
		Failed:     1,
	}

	ch.On("PublishWithContext", mock.Anything, ExchangeName, ReportKey, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got usecase.CycleReport
		if err := json.Unmarshal(msg.Body, &got); err != nil {
			return false
		}
		return msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json" &&
			msg.MessageId == "c-1" &&
			got.Succeeded == 2 && got.Failed == 1
	})).Return(nil)

	require.NoError(t, producer.PublishCycleReport(context.Background(), report))
	ch.AssertExpectations(t)
}

func TestProducer_PublishClientRegistered(t *testing.T) {
	ch := new(MockChannel)
	producer := NewProducer(ch)

	ch.On("PublishWithContext", mock.Anything, ExchangeName, RegisteredKey, false, false, mock.Anything).Return(nil)

	err := producer.PublishClientRegistered(context.Background(), usecase.ClientRegisteredEvent{EventID: "e-1", ClientID: 9})

	require.NoError(t, err)
	ch.AssertExpectations(t)
}

func TestProducer_PublishError(t *testing.T) {
	ch := new(MockChannel)
	producer := NewProducer(ch)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel/connection is not open"))

	err := producer.PublishRunRequest(context.Background(), RunRequest{RequestID: "r-1"})

	assert.ErrorContains(t, err, "falha ao publicar no RabbitMQ")
}
