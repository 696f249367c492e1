// Package queue defines the message payloads exchanged over the
// broker and the background consumer that turns them into
// notifications.
package queue

// Lifecycle event types published to the seat.lifecycle queue.
const (
	EventSubscriptionCreated = "subscription.created"
	EventSubscriptionExpired = "subscription.expired"
	EventSeatReassigned      = "seat.reassigned"
	EventSeatAvailable       = "seat.available"
)

// QueueName is the durable queue carrying lifecycle events.
const QueueName = "seat.lifecycle"

// LifecycleEvent is published whenever the coordinator changes seat
// occupancy. It carries enough for downstream consumers to notify or
// log without querying the primary database.
type LifecycleEvent struct {
	Type           string `json:"type"`
	SubscriptionID uint64 `json:"subscription_id,omitempty"`
	MemberID       uint64 `json:"member_id,omitempty"`
	SeatNumber     uint32 `json:"seat_number"`
	EndDate        string `json:"end_date,omitempty"`
	OccurredAt     string `json:"occurred_at"`
}
