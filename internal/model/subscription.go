package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Subscription statuses. A subscription transitions from active to
// expired exactly once and is never reactivated; ending a seat
// assignment always creates a fresh subscription row for the next
// member instead of reusing the old one.
const (
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

// Payment methods accepted at the front desk.
const (
	PaymentCash = "cash"
	PaymentUPI  = "UPI"
)

// Subscription is a time-bounded grant of one seat to one member.
// EndDate is derived from StartDate plus the free-text Duration
// ("1 month", "30 days"). Expired rows are retained for history.
type Subscription struct {
	ID          uint64          `json:"id"`           // subscriptions.id
	MemberID    uint64          `json:"member_id"`    // subscriptions.member_id
	SeatID      uint64          `json:"seat_id"`      // subscriptions.seat_id
	LocationID  uint64          `json:"location_id"`  // subscriptions.location_id
	StartDate   time.Time       `json:"start_date"`   // subscriptions.start_date
	EndDate     time.Time       `json:"end_date"`     // subscriptions.end_date (derived)
	Duration    string          `json:"duration"`     // subscriptions.duration
	TotalAmount decimal.Decimal `json:"total_amount"` // subscriptions.total_amount
	Status      string          `json:"status"`       // subscriptions.status (active|expired)
	CreatedAt   time.Time       `json:"created_at"`   // subscriptions.created_at
}

// Payment is one entry in a subscription's payment trail. UniqueCode
// follows the same EVOLVE{yyyy}{mm}{seq3} format as member codes but
// draws from the payment-scoped counter.
type Payment struct {
	ID             uint64          `json:"id"`              // payments.id
	SubscriptionID uint64          `json:"subscription_id"` // payments.subscription_id
	Amount         decimal.Decimal `json:"amount"`          // payments.amount
	Method         string          `json:"method"`          // payments.method (cash|UPI)
	UPICode        string          `json:"upi_code,omitempty"` // payments.upi_code (nullable)
	PaidAt         time.Time       `json:"paid_at"`         // payments.paid_at
	UniqueCode     string          `json:"unique_code"`     // payments.unique_code
}
