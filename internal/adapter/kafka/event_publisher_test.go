package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codigix/Furnituredemo/internal/usecase"
)

func TestOrderCreatedEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "o-1", string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, "order.created.v1", env.Type)

		var ev usecase.OrderCreatedEvent
		require.NoError(t, json.Unmarshal(env.Payload, &ev))
		assert.Equal(t, "o-1", ev.OrderID)
		assert.Equal(t, "25.00", ev.Total)
		assert.Equal(t, 2, ev.Lines)
		return nil
	})

	p := NewEventPublisher(producer, "storefront.orders")
	err := p.OrderCreated(context.Background(), usecase.OrderCreatedEvent{
		OrderID: "o-1", UserID: "u1", Total: "25.00", Lines: 2,
	})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestOrderStatusChangedEnvelope(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, "order.status_changed.v1", env.Type)

		var ev usecase.OrderStatusChangedEvent
		require.NoError(t, json.Unmarshal(env.Payload, &ev))
		assert.Equal(t, "pending", ev.From)
		assert.Equal(t, "shipped", ev.To)
		return nil
	})

	p := NewEventPublisher(producer, "storefront.orders")
	err := p.OrderStatusChanged(context.Background(), usecase.OrderStatusChangedEvent{
		OrderID: "o-1", From: "pending", To: "shipped",
	})
	require.NoError(t, err)
	require.NoError(t, producer.Close())
}

func TestPublishFailureSurfaces(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrBrokerNotAvailable)

	p := NewEventPublisher(producer, "storefront.orders")
	err := p.OrderCreated(context.Background(), usecase.OrderCreatedEvent{OrderID: "o-1"})
	assert.Error(t, err)
	require.NoError(t, producer.Close())
}
