package repository

import (
	"context"
	"database/sql"

	"github.com/evolvehq/studyspace/internal/model"
)

// LogRepo appends and lists audit records. The table is append-only:
// there is no update or delete, and callers treat Append as
// best-effort observability rather than part of their write's
// correctness.
type LogRepo struct {
	db *sql.DB
}

// NewLogRepo constructs a LogRepo with the given DB handle.
func NewLogRepo(db *sql.DB) *LogRepo { return &LogRepo{db: db} }

// Append writes one audit record.
func (r *LogRepo) Append(ctx context.Context, action, entity, entityID, details, performedBy string) error {
	const q = `INSERT INTO audit_logs (action, entity, entity_id, details, performed_by)
	           VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, action, entity, entityID, details, performedBy)
	return err
}

// List returns the audit trail, newest first.
func (r *LogRepo) List(ctx context.Context) ([]model.AuditLog, error) {
	const q = `SELECT id, action, entity, COALESCE(entity_id, ''), COALESCE(details, ''),
	                  COALESCE(performed_by, ''), created_at
	           FROM audit_logs ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AuditLog
	for rows.Next() {
		var l model.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Entity, &l.EntityID, &l.Details,
			&l.PerformedBy, &l.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
