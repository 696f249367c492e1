package repository

import (
	"context"
	"database/sql"
)

// SettingRepo stores key-value configuration rows edited on the admin
// settings page.
type SettingRepo struct {
	db *sql.DB
}

// NewSettingRepo constructs a SettingRepo with the given DB handle.
func NewSettingRepo(db *sql.DB) *SettingRepo { return &SettingRepo{db: db} }

// All returns every setting as a flat key->value map.
func (r *SettingRepo) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT `key`, value FROM settings")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Upsert inserts or replaces a single key.
func (r *SettingRepo) Upsert(ctx context.Context, key, value string) error {
	const q = "INSERT INTO settings (`key`, value) VALUES (?, ?) " +
		"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP"
	_, err := r.db.ExecContext(ctx, q, key, value)
	return err
}
