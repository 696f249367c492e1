package model

import "time"

// Seat statuses. A seat is occupied exactly when both MemberID and
// SubscriptionID are set, and vacant exactly when both are nil.
const (
	SeatVacant   = "vacant"
	SeatOccupied = "occupied"
)

// Seat is a numbered desk slot in the study space. The full set of
// seats is provisioned once by the init endpoint and rows are never
// created or removed afterwards, only toggled between vacant and
// occupied by the subscription lifecycle.
type Seat struct {
	ID             uint64    `json:"id"`              // seats.id
	SeatNumber     uint32    `json:"seat_number"`     // seats.seat_number (unique, 1-based)
	Status         string    `json:"status"`          // seats.status (vacant|occupied)
	MemberID       *uint64   `json:"member_id"`       // seats.member_id (nullable FK)
	SubscriptionID *uint64   `json:"subscription_id"` // seats.subscription_id (nullable FK)
	UpdatedAt      time.Time `json:"updated_at"`      // seats.updated_at
}
