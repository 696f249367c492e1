package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/evolvehq/studyspace/internal/model"
)

// NotificationWriter is the slice of the notification store the
// consumer needs. Satisfied by repository.NotificationRepo.
type NotificationWriter interface {
	CreateForRole(ctx context.Context, n *model.Notification, roles ...string) error
}

// StartLifecycleConsumer connects to RabbitMQ, declares the durable
// seat.lifecycle queue and consumes events, persisting a notification
// row for every Admin and Manager. It runs a reconnect loop with
// exponential backoff and never returns in normal operation; failed
// messages are rejected without requeue to avoid tight redelivery
// loops.
func StartLifecycleConsumer(url string, store NotificationWriter) {
	if url == "" || store == nil {
		log.Println("lifecycle-consumer: disabled (no broker URL)")
		return
	}
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("lifecycle-consumer: dial failed: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, store); err != nil {
			log.Printf("lifecycle-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection, store NotificationWriter) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Printf("lifecycle-consumer: set QoS failed: %v", err)
	}
	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, store); err != nil {
			log.Printf("lifecycle-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, store NotificationWriter) error {
	var ev LifecycleEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	n := notificationFor(ev)
	if n == nil {
		return nil // event type carries no staff-facing notification
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return store.CreateForRole(ctx, n, model.RoleAdmin, model.RoleManager)
}

// notificationFor maps a lifecycle event onto the notification shown
// on the admin dashboard.
func notificationFor(ev LifecycleEvent) *model.Notification {
	switch ev.Type {
	case EventSeatAvailable:
		return &model.Notification{
			Type:     model.NotifySeatAvailable,
			Title:    fmt.Sprintf("Seat %d is now vacant", ev.SeatNumber),
			Message:  "A subscription ended with an empty waiting list.",
			Priority: "medium",
		}
	case EventSeatReassigned:
		return &model.Notification{
			Type:     model.NotifySeatAvailable,
			Title:    fmt.Sprintf("Seat %d reassigned from the waiting list", ev.SeatNumber),
			Message:  fmt.Sprintf("Member %d now holds seat %d until %s.", ev.MemberID, ev.SeatNumber, ev.EndDate),
			Priority: "medium",
		}
	case EventSubscriptionExpired:
		return &model.Notification{
			Type:     model.NotifySubscriptionExpiry,
			Title:    fmt.Sprintf("Subscription %d expired", ev.SubscriptionID),
			Message:  fmt.Sprintf("Seat %d has been released.", ev.SeatNumber),
			Priority: "high",
		}
	default:
		return nil
	}
}
