package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrSubscriptionNotFound is returned when a subscription lookup
// yields no rows.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// SubscriptionRepo provides access to the subscriptions table.
// Subscription rows are created by the lifecycle coordinator, flip
// from active to expired exactly once, and are never deleted; expired
// rows remain as the payment and occupancy history.
type SubscriptionRepo struct {
	db *sql.DB
}

// NewSubscriptionRepo constructs a SubscriptionRepo with the given DB handle.
func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{db: db} }

const subCols = `id, member_id, seat_id, location_id, start_date, end_date, duration, total_amount, status, created_at`

// Create inserts a new subscription and populates its generated ID.
func (r *SubscriptionRepo) Create(ctx context.Context, s *model.Subscription) error {
	const q = `INSERT INTO subscriptions
	           (member_id, seat_id, location_id, start_date, end_date, duration, total_amount, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.MemberID, s.SeatID, s.LocationID, s.StartDate, s.EndDate, s.Duration, s.TotalAmount, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// GetByID retrieves a subscription by primary key.
func (r *SubscriptionRepo) GetByID(ctx context.Context, id uint64) (*model.Subscription, error) {
	return r.getOne(ctx, `SELECT `+subCols+` FROM subscriptions WHERE id = ?`, id)
}

// List retrieves all subscriptions, newest first.
func (r *SubscriptionRepo) List(ctx context.Context) ([]model.Subscription, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+subCols+` FROM subscriptions ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Subscription
	for rows.Next() {
		var s model.Subscription
		if err := rows.Scan(&s.ID, &s.MemberID, &s.SeatID, &s.LocationID, &s.StartDate, &s.EndDate,
			&s.Duration, &s.TotalAmount, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ActiveByMember returns the member's active subscription with the
// latest end date, or ErrSubscriptionNotFound.
func (r *SubscriptionRepo) ActiveByMember(ctx context.Context, memberID uint64) (*model.Subscription, error) {
	const q = `SELECT ` + subCols + ` FROM subscriptions
	           WHERE member_id = ? AND status = 'active'
	           ORDER BY end_date DESC LIMIT 1`
	return r.getOne(ctx, q, memberID)
}

// LatestByMember returns the member's most recent subscription of any
// status, by end date.
func (r *SubscriptionRepo) LatestByMember(ctx context.Context, memberID uint64) (*model.Subscription, error) {
	const q = `SELECT ` + subCols + ` FROM subscriptions
	           WHERE member_id = ?
	           ORDER BY end_date DESC LIMIT 1`
	return r.getOne(ctx, q, memberID)
}

// MarkExpired flips the subscription to the terminal expired state.
// Flipping an already-expired row is a no-op, not an error.
func (r *SubscriptionRepo) MarkExpired(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET status = ? WHERE id = ?`, model.SubscriptionExpired, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Zero rows can mean unknown id or unchanged status; distinguish.
		var exists int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM subscriptions WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	return nil
}

// UpdateSeat repoints the subscription at a different seat. Used by
// the change-seat operation.
func (r *SubscriptionRepo) UpdateSeat(ctx context.Context, id, seatID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE subscriptions SET seat_id = ? WHERE id = ?`, seatID, id)
	return err
}

func (r *SubscriptionRepo) getOne(ctx context.Context, q string, args ...interface{}) (*model.Subscription, error) {
	var s model.Subscription
	err := r.db.QueryRowContext(ctx, q, args...).
		Scan(&s.ID, &s.MemberID, &s.SeatID, &s.LocationID, &s.StartDate, &s.EndDate,
			&s.Duration, &s.TotalAmount, &s.Status, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &s, nil
}
