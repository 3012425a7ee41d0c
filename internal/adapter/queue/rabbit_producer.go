package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/RishiBuilds/soledrip-xr-platform/internal/usecase"
)

const (
	exchangeName = "order.events"

	settledRoutingKey = "order.settled"
	settledQueueName  = "order.settled.q"

	reconcileRoutingKey = "order.reconcile"
	ReconcileQueueName  = "order.reconcile.q"
)

// RabbitProducer implements usecase.SettlementEvents.
type RabbitProducer struct {
	ch *amqp.Channel
}

// NewRabbitProducer sets up the exchange, queues, and bindings once at startup.
func NewRabbitProducer(ch *amqp.Channel) (*RabbitProducer, error) {
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

	for _, b := range []struct{ queue, key string }{
		{settledQueueName, settledRoutingKey},
		{ReconcileQueueName, reconcileRoutingKey},
	} {
		q, err := ch.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(q.Name, b.key, exchangeName, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch}, nil
}

// PublishSettled emits an "order.settled" event for downstream consumers
// (fulfillment, analytics).
func (p *RabbitProducer) PublishSettled(ctx context.Context, msg usecase.SettledMsg) error {
	return p.publish(ctx, settledRoutingKey, msg)
}

// PublishReconcile records a non-fatal settlement failure for the
// reconciliation worker to repair.
func (p *RabbitProducer) PublishReconcile(ctx context.Context, msg usecase.ReconcileMsg) error {
	return p.publish(ctx, reconcileRoutingKey, msg)
}

func (p *RabbitProducer) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(
		ctx,
		exchangeName,
		key,
		false, // mandatory
		false, // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}

	return nil
}

var _ usecase.SettlementEvents = (*RabbitProducer)(nil)
