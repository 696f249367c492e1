package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrLocationNotFound is returned when a location lookup yields no rows.
var ErrLocationNotFound = errors.New("location not found")

// LocationRepo manages study-space branches. Only the default branch
// exists today; subscriptions reference it for the verify screen.
type LocationRepo struct {
	db *sql.DB
}

// NewLocationRepo constructs a LocationRepo with the given DB handle.
func NewLocationRepo(db *sql.DB) *LocationRepo { return &LocationRepo{db: db} }

// EnsureDefault creates the default branch when none exists and
// returns its id. Idempotent; used by the init endpoint.
func (r *LocationRepo) EnsureDefault(ctx context.Context, name, address string) (uint64, error) {
	var id uint64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM locations ORDER BY id LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO locations (name, address) VALUES (?, ?)`, name, address)
	if err != nil {
		return 0, err
	}
	nid, err := res.LastInsertId()
	return uint64(nid), err
}

// Default returns the first provisioned branch.
func (r *LocationRepo) Default(ctx context.Context) (*model.Location, error) {
	var l model.Location
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address FROM locations ORDER BY id LIMIT 1`).
		Scan(&l.ID, &l.Name, &l.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByID retrieves a branch by primary key.
func (r *LocationRepo) GetByID(ctx context.Context, id uint64) (*model.Location, error) {
	var l model.Location
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.Address)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLocationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}
