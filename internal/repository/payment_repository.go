package repository

import (
	"context"
	"database/sql"

	"github.com/evolvehq/studyspace/internal/model"
)

// PaymentRepo provides access to the payments table. Payments are
// only ever created by the lifecycle coordinator as part of a
// subscription's trail; there is no update or delete.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo constructs a PaymentRepo with the given DB handle.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts a payment and populates its generated ID.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (subscription_id, amount, method, upi_code, paid_at, unique_code)
	           VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		p.SubscriptionID, p.Amount, p.Method, p.UPICode, p.PaidAt, p.UniqueCode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// ListBySubscription returns a subscription's payment trail in the
// order the payments were taken.
func (r *PaymentRepo) ListBySubscription(ctx context.Context, subscriptionID uint64) ([]model.Payment, error) {
	const q = `SELECT id, subscription_id, amount, method, COALESCE(upi_code, ''), paid_at, unique_code
	           FROM payments WHERE subscription_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, subscriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.SubscriptionID, &p.Amount, &p.Method,
			&p.UPICode, &p.PaidAt, &p.UniqueCode); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
