package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Expense is an operating cost entry (rent, electricity, supplies)
// managed by Managers and Admins. Every mutation is audited.
type Expense struct {
	ID          uint64          `json:"id"`          // expenses.id
	Description string          `json:"description"` // expenses.description
	Amount      decimal.Decimal `json:"amount"`      // expenses.amount
	Category    string          `json:"category"`    // expenses.category
	PaidTo      string          `json:"paid_to"`     // expenses.paid_to
	Method      string          `json:"method"`      // expenses.method
	SpentOn     time.Time       `json:"spent_on"`    // expenses.spent_on
	CreatedAt   time.Time       `json:"created_at"`  // expenses.created_at
}
