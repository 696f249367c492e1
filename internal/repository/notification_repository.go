package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrNotificationNotFound is returned when a notification lookup
// yields no rows for the requesting user.
var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepo stores in-app notifications written by the queue
// consumer and read by the dashboard.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo constructs a NotificationRepo with the given DB handle.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a notification for one user.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `INSERT INTO notifications (user_id, type, title, message, priority)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, n.UserID, n.Type, n.Title, n.Message, n.Priority)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// CreateForRole fans one notification out to every user holding any of
// the given roles. Used by the consumer to alert Admins and Managers.
func (r *NotificationRepo) CreateForRole(ctx context.Context, n *model.Notification, roles ...string) error {
	if len(roles) == 0 {
		return nil
	}
	q := `INSERT INTO notifications (user_id, type, title, message, priority)
	      SELECT id, ?, ?, ?, ? FROM users WHERE role IN (?`
	args := []interface{}{n.Type, n.Title, n.Message, n.Priority, roles[0]}
	for _, role := range roles[1:] {
		q += ",?"
		args = append(args, role)
	}
	q += ")"
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Notification, error) {
	const q = `SELECT id, user_id, type, title, message, priority, ` + "`read`" + `, created_at
	           FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.Priority, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// MarkRead flags a notification as read, scoped to its owner.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET `read` = TRUE WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
