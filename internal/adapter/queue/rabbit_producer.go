package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/codigix/Furnituredemo/internal/usecase"
)

const (
	exchangeName = "storefront.notify"
	routingKey   = "notify.email"

	// MailQueue is consumed by the mailer worker registered in app
	// wiring.
	MailQueue = "notify.email.q"
)

// RabbitNotifier implements usecase.Notifier by enqueueing mail jobs.
// It never returns an error to the caller: a broker failure is
// logged and the notification dropped, per the port's contract.
type RabbitNotifier struct {
	ch  *amqp.Channel
	log *slog.Logger
}

// NewRabbitNotifier declares the exchange, queue and binding once at
// startup, with publisher confirms enabled.
func NewRabbitNotifier(ch *amqp.Channel, log *slog.Logger) (*RabbitNotifier, error) {
	if err := ch.ExchangeDeclare(
		exchangeName,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		MailQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitNotifier{ch: ch, log: log}, nil
}

func (p *RabbitNotifier) Notify(ctx context.Context, dest, subject, body string) {
	payload, err := json.Marshal(usecase.MailJob{To: dest, Subject: subject, Body: body})
	if err != nil {
		p.log.Error("notify: marshal mail job", "err", err)
		return
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         payload,
	}
	if err := p.ch.PublishWithContext(ctx, exchangeName, routingKey, false, false, pub); err != nil {
		p.log.Error("notify: publish mail job", "to", dest, "err", err)
	}
}

var _ usecase.Notifier = (*RabbitNotifier)(nil)
