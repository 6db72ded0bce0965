package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Publisher sends events to RabbitMQ.  It dials per publish so a broker
// outage never leaves a stale connection behind.  Errors are logged and
// returned; callers treat them as best effort.
type Publisher struct {
	url string
	log logrus.FieldLogger
}

func NewPublisher(url string, log logrus.FieldLogger) *Publisher {
	return &Publisher{url: url, log: log}
}

// PublishReservationConfirmed publishes ev as a persistent JSON message on
// the reservation.confirmed queue.
func (p *Publisher) PublishReservationConfirmed(ctx context.Context, ev ReservationConfirmedEvent) error {
	log := p.log.WithField("reservation_group_id", ev.GroupID)

	conn, err := amqp.Dial(p.url)
	if err != nil {
		log.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// idempotent; durable so messages survive broker restarts
	if _, err := ch.QueueDeclare(ReservationConfirmedQueue, true, false, false, false, nil); err != nil {
		log.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    ev.EventID,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", ReservationConfirmedQueue, false, false, pub); err != nil {
		log.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// NopPublisher drops every event.  Used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishReservationConfirmed(context.Context, ReservationConfirmedEvent) error {
	return nil
}
