package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrMemberNotFound is returned when a member lookup yields no rows.
var ErrMemberNotFound = errors.New("member not found")

// MemberRepo provides CRUD and search over the members table.
type MemberRepo struct {
	db *sql.DB
}

// NewMemberRepo constructs a MemberRepo with the given DB handle.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

const memberCols = `id, member_id, name, email, phone, address, COALESCE(exam_prep, ''), created_at, updated_at`

// Create inserts a member. The caller supplies the freshly minted
// member code; on success the generated primary key is populated.
func (r *MemberRepo) Create(ctx context.Context, m *model.Member) error {
	const q = `INSERT INTO members (member_id, name, email, phone, address, exam_prep)
	           VALUES (?, ?, ?, ?, ?, NULLIF(?, ''))`
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	res, err := r.db.ExecContext(ctx, q, m.MemberID, m.Name, m.Email, m.Phone, m.Address, m.ExamPrep)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return nil
}

// List retrieves all members, newest first.
func (r *MemberRepo) List(ctx context.Context) ([]model.Member, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+memberCols+` FROM members ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Phone, &m.Address,
			&m.ExamPrep, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// GetByID retrieves a member by primary key.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (*model.Member, error) {
	return r.getOne(ctx, `SELECT `+memberCols+` FROM members WHERE id = ?`, id)
}

// GetByMemberID retrieves a member by its public EVOLVE code.
func (r *MemberRepo) GetByMemberID(ctx context.Context, code string) (*model.Member, error) {
	return r.getOne(ctx, `SELECT `+memberCols+` FROM members WHERE member_id = ?`, strings.TrimSpace(code))
}

// GetByEmail retrieves a member by case-insensitive exact email match.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (*model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.getOne(ctx, `SELECT `+memberCols+` FROM members WHERE LOWER(email) = ?`, email)
}

// FindByPhone returns the first member whose phone contains the given
// digits. Spaces and dashes in the needle are stripped before matching.
func (r *MemberRepo) FindByPhone(ctx context.Context, phone string) (*model.Member, error) {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
	const q = `SELECT ` + memberCols + ` FROM members
	           WHERE REPLACE(REPLACE(phone, ' ', ''), '-', '') LIKE CONCAT('%', ?, '%')
	           ORDER BY id LIMIT 1`
	return r.getOne(ctx, q, clean)
}

// FindByName returns the first member whose name contains the needle,
// case-insensitively.
func (r *MemberRepo) FindByName(ctx context.Context, name string) (*model.Member, error) {
	const q = `SELECT ` + memberCols + ` FROM members
	           WHERE LOWER(name) LIKE CONCAT('%', LOWER(?), '%')
	           ORDER BY id LIMIT 1`
	return r.getOne(ctx, q, strings.TrimSpace(name))
}

// Search matches the term as a substring against member_id, name,
// email and phone for autocomplete hints. Results are capped at limit.
func (r *MemberRepo) Search(ctx context.Context, term string, limit int) ([]model.Member, error) {
	const q = `SELECT ` + memberCols + ` FROM members
	           WHERE member_id LIKE CONCAT('%', ?, '%')
	              OR LOWER(name) LIKE CONCAT('%', LOWER(?), '%')
	              OR LOWER(email) LIKE CONCAT('%', LOWER(?), '%')
	              OR phone LIKE CONCAT('%', ?, '%')
	           ORDER BY id LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, term, term, term, term, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Member
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Phone, &m.Address,
			&m.ExamPrep, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Update replaces all mutable fields. MemberID is never touched.
func (r *MemberRepo) Update(ctx context.Context, m *model.Member) error {
	const q = `UPDATE members
	           SET name = ?, email = ?, phone = ?, address = ?, exam_prep = NULLIF(?, ''),
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		m.Name, strings.ToLower(strings.TrimSpace(m.Email)), m.Phone, m.Address, m.ExamPrep, m.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Delete hard-deletes a member. Subscriptions referencing the member
// are left in place; there is deliberately no cascade.
func (r *MemberRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepo) getOne(ctx context.Context, q string, arg interface{}) (*model.Member, error) {
	var m model.Member
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&m.ID, &m.MemberID, &m.Name, &m.Email, &m.Phone, &m.Address,
			&m.ExamPrep, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}
