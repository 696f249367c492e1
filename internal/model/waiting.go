package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// WaitingEntry is a member's request for a seat while none is vacant.
// Entries are served strictly in requested_at order; there is no
// capacity limit and repeat requests by the same member are allowed.
type WaitingEntry struct {
	ID            uint64          `json:"id"`             // waiting_list.id
	MemberID      uint64          `json:"member_id"`      // waiting_list.member_id
	RequestedAt   time.Time       `json:"requested_at"`   // waiting_list.requested_at
	StartDate     time.Time       `json:"start_date"`     // waiting_list.start_date (desired)
	Duration      string          `json:"duration"`       // waiting_list.duration
	Amount        decimal.Decimal `json:"amount"`         // waiting_list.amount
	PaymentMethod string          `json:"payment_method"` // waiting_list.payment_method
	UPICode       string          `json:"upi_code,omitempty"` // waiting_list.upi_code (nullable)
}
