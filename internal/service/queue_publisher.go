package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/evolvehq/studyspace/internal/queue"
)

// AMQPPublisher pushes lifecycle events to RabbitMQ. Each publish
// dials a fresh connection; events are occasional (a handful per
// lifecycle operation) so connection reuse is not worth the state.
// Errors are logged and returned so callers can ignore them without
// interrupting the request flow.
type AMQPPublisher struct {
	URL string
}

// NewAMQPPublisher returns a publisher for the given broker URL, or
// nil when the URL is empty so callers can skip publishing entirely.
func NewAMQPPublisher(url string) *AMQPPublisher {
	if url == "" {
		return nil
	}
	return &AMQPPublisher{URL: url}
}

// Publish sends one event to the seat.lifecycle queue. The queue is
// declared durable and messages are marked persistent.
func (p *AMQPPublisher) Publish(ctx context.Context, ev q.LifecycleEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		q.QueueName, // name
		true,        // durable
		false,       // autoDelete
		false,       // exclusive
		false,       // noWait
		nil,         // args
	); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",          // default exchange
		q.QueueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
