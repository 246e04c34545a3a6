package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/codigix/Furnituredemo/internal/usecase"
)

func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewSyncProducer(brokers, cfg)
}

// EventPublisher emits order lifecycle events, keyed by order id so
// all events for one order land on the same partition in order.
type EventPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventPublisher(producer sarama.SyncProducer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (p *EventPublisher) OrderCreated(_ context.Context, ev usecase.OrderCreatedEvent) error {
	return p.publish("order.created.v1", ev.OrderID, ev)
}

func (p *EventPublisher) OrderStatusChanged(_ context.Context, ev usecase.OrderStatusChangedEvent) error {
	return p.publish("order.status_changed.v1", ev.OrderID, ev)
}

func (p *EventPublisher) publish(eventType, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}
	body, err := json.Marshal(envelope{Type: eventType, Payload: raw})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("send %s: %w", eventType, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*EventPublisher)(nil)
