package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrWaitingNotFound is returned when a waiting-list lookup yields no rows.
var ErrWaitingNotFound = errors.New("waiting list entry not found")

// WaitingRepo provides access to the waiting_list table. The list is
// served strictly in requested_at order with insertion order breaking
// ties; there is no capacity limit and no deduplication.
type WaitingRepo struct {
	db *sql.DB
}

// NewWaitingRepo constructs a WaitingRepo with the given DB handle.
func NewWaitingRepo(db *sql.DB) *WaitingRepo { return &WaitingRepo{db: db} }

const waitingCols = `id, member_id, requested_at, start_date, duration, amount, payment_method, COALESCE(upi_code, '')`

// Enqueue appends a request to the waiting list.
func (r *WaitingRepo) Enqueue(ctx context.Context, w *model.WaitingEntry) error {
	const q = `INSERT INTO waiting_list (member_id, requested_at, start_date, duration, amount, payment_method, upi_code)
	           VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''))`
	res, err := r.db.ExecContext(ctx, q,
		w.MemberID, w.RequestedAt, w.StartDate, w.Duration, w.Amount, w.PaymentMethod, w.UPICode)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	w.ID = uint64(id)
	return nil
}

// List returns the whole queue in service order.
func (r *WaitingRepo) List(ctx context.Context) ([]model.WaitingEntry, error) {
	const q = `SELECT ` + waitingCols + ` FROM waiting_list ORDER BY requested_at, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.WaitingEntry
	for rows.Next() {
		var w model.WaitingEntry
		if err := rows.Scan(&w.ID, &w.MemberID, &w.RequestedAt, &w.StartDate,
			&w.Duration, &w.Amount, &w.PaymentMethod, &w.UPICode); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// Earliest returns the next entry to serve without removing it. The
// lifecycle coordinator deletes the entry only after the promotion
// writes have gone through, so a failed promotion leaves the queue
// intact.
func (r *WaitingRepo) Earliest(ctx context.Context) (*model.WaitingEntry, error) {
	const q = `SELECT ` + waitingCols + ` FROM waiting_list ORDER BY requested_at, id LIMIT 1`
	var w model.WaitingEntry
	err := r.db.QueryRowContext(ctx, q).
		Scan(&w.ID, &w.MemberID, &w.RequestedAt, &w.StartDate,
			&w.Duration, &w.Amount, &w.PaymentMethod, &w.UPICode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWaitingNotFound
		}
		return nil, err
	}
	return &w, nil
}

// Delete removes an entry, either because it was served or because an
// admin removed it explicitly.
func (r *WaitingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waiting_list WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrWaitingNotFound
	}
	return nil
}
