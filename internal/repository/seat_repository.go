package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo provides methods to work with seats in the database. Seats
// are provisioned once and only toggled between vacant and occupied;
// the guarded Occupy update is the sole place the occupied state is
// entered, so status=occupied always travels together with the member
// and subscription references.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// ProvisionAll inserts numbered vacant seats 1..count in a single
// statement. Used only by the init endpoint when the table is empty.
func (r *SeatRepo) ProvisionAll(ctx context.Context, count int) error {
	if count <= 0 {
		return nil
	}
	query := `INSERT INTO seats (seat_number, status) VALUES `
	args := make([]interface{}, 0, count*2)
	for i := 1; i <= count; i++ {
		if i > 1 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, i, model.SeatVacant)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Count returns the number of provisioned seats.
func (r *SeatRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM seats`).Scan(&n)
	return n, err
}

// List retrieves all seats ordered by seat_number.
func (r *SeatRepo) List(ctx context.Context) ([]model.Seat, error) {
	const q = `SELECT id, seat_number, status, member_id, subscription_id, updated_at
	           FROM seats ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByNumber retrieves a seat by its public seat number.
func (r *SeatRepo) GetByNumber(ctx context.Context, seatNumber uint32) (*model.Seat, error) {
	const q = `SELECT id, seat_number, status, member_id, subscription_id, updated_at
	           FROM seats WHERE seat_number = ?`
	return r.getOne(ctx, q, seatNumber)
}

// GetByID retrieves a seat by its primary key.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT id, seat_number, status, member_id, subscription_id, updated_at
	           FROM seats WHERE id = ?`
	return r.getOne(ctx, q, id)
}

// Occupy marks a seat occupied for the given member and subscription.
// The update is guarded on status='vacant'; zero affected rows means
// the seat was taken (or never existed) and ErrSeatUnavailable is
// returned so the caller leaves all other entities untouched.
func (r *SeatRepo) Occupy(ctx context.Context, seatID, memberID, subscriptionID uint64) error {
	const q = `UPDATE seats
	           SET status = ?, member_id = ?, subscription_id = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, q, model.SeatOccupied, memberID, subscriptionID, seatID, model.SeatVacant)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatUnavailable
	}
	return nil
}

// Vacate returns a seat to the vacant state, always clearing both
// reference fields regardless of the previous status.
func (r *SeatRepo) Vacate(ctx context.Context, seatID uint64) error {
	const q = `UPDATE seats
	           SET status = ?, member_id = NULL, subscription_id = NULL, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, model.SeatVacant, seatID)
	return err
}

func (r *SeatRepo) getOne(ctx context.Context, q string, arg interface{}) (*model.Seat, error) {
	var (
		s        model.Seat
		memberID sql.NullInt64
		subID    sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&s.ID, &s.SeatNumber, &s.Status, &memberID, &subID, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	applySeatRefs(&s, memberID, subID)
	return &s, nil
}

func scanSeat(rows *sql.Rows) (model.Seat, error) {
	var (
		s        model.Seat
		memberID sql.NullInt64
		subID    sql.NullInt64
	)
	err := rows.Scan(&s.ID, &s.SeatNumber, &s.Status, &memberID, &subID, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	applySeatRefs(&s, memberID, subID)
	return s, nil
}

func applySeatRefs(s *model.Seat, memberID, subID sql.NullInt64) {
	if memberID.Valid {
		v := uint64(memberID.Int64)
		s.MemberID = &v
	}
	if subID.Valid {
		v := uint64(subID.Int64)
		s.SubscriptionID = &v
	}
}
