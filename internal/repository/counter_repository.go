package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Counter scopes. Member and payment codes share the same EVOLVE
// format but draw from independent sequences.
const (
	ScopeMember  = "member"
	ScopePayment = "payment"
)

// CounterRepo hands out monotonic per-month sequence numbers backing
// member and payment code generation. The sequence lives in the
// code_counters table keyed by (scope, year-month); the increment is a
// single atomic upsert, so concurrent creations cannot mint the same
// code.
type CounterRepo struct {
	db *sql.DB
}

// NewCounterRepo constructs a CounterRepo with the given DB handle.
func NewCounterRepo(db *sql.DB) *CounterRepo { return &CounterRepo{db: db} }

// Next returns the next code for the scope at time now. It uses the
// MySQL LAST_INSERT_ID(expr) trick so the read-increment is one
// statement.
func (r *CounterRepo) Next(ctx context.Context, scope string, now time.Time) (string, error) {
	ym := now.Format("200601")
	const q = `INSERT INTO code_counters (scope, ym, seq) VALUES (?, ?, LAST_INSERT_ID(1))
	           ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)`
	res, err := r.db.ExecContext(ctx, q, scope, ym)
	if err != nil {
		return "", err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return "", err
	}
	return FormatCode(now, seq), nil
}

// FormatCode composes the public EVOLVE{yyyy}{mm}{seq3} code. The
// sequence is zero-padded to three digits; sequences past 999 widen
// the field rather than wrapping.
func FormatCode(now time.Time, seq int64) string {
	return fmt.Sprintf("EVOLVE%s%03d", now.Format("200601"), seq)
}
