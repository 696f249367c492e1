package model

import "time"

// AuditLog is one append-only record of an administrative action.
// Rows are never mutated or deleted. Writes are best-effort: a failed
// append never rolls back the action it describes.
type AuditLog struct {
	ID          uint64    `json:"id"`           // audit_logs.id
	Action      string    `json:"action"`       // e.g. CREATE, UPDATE, DELETE, END
	Entity      string    `json:"entity"`       // e.g. Member, Subscription, Expense
	EntityID    string    `json:"entity_id"`    // identifier of the affected row
	Details     string    `json:"details"`      // human-readable summary
	PerformedBy string    `json:"performed_by"` // user email, or "system"
	CreatedAt   time.Time `json:"created_at"`
}
