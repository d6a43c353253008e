package rabbit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const Exchange = "travelita.events"

// Routing keys published by this service.
const (
	KeyBookingCreated     = "booking.created"
	KeyPackageApproved    = "package.approved"
	KeyPackageRejected    = "package.rejected"
	KeyReconcileRequested = "reconcile.requested"
	KeyReconcileCompleted = "reconcile.completed"
)

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil)
	if err != nil {
		return nil, err
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, key string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        body,
	}
	return p.ch.PublishWithContext(ctx, Exchange, key, false, false, msg)
}
