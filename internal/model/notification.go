package model

import "time"

// Notification types emitted by the lifecycle event consumer.
const (
	NotifySubscriptionExpiry = "subscription_expiry"
	NotifyPaymentOverdue     = "payment_overdue"
	NotifySeatAvailable      = "seat_available"
	NotifySystemAlert        = "system_alert"
)

// Notification is an in-app message for a back-office user, written
// by the queue consumer when lifecycle events arrive.
type Notification struct {
	ID        uint64    `json:"id"`       // notifications.id
	UserID    uint64    `json:"user_id"`  // notifications.user_id
	Type      string    `json:"type"`     // notifications.type
	Title     string    `json:"title"`    // notifications.title
	Message   string    `json:"message"`  // notifications.message
	Priority  string    `json:"priority"` // high|medium|low
	Read      bool      `json:"read"`     // notifications.read
	CreatedAt time.Time `json:"created_at"`
}
