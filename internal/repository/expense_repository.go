package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/evolvehq/studyspace/internal/model"
)

// ErrExpenseNotFound is returned when an expense lookup yields no rows.
var ErrExpenseNotFound = errors.New("expense not found")

// ExpenseRepo provides CRUD over the expenses table.
type ExpenseRepo struct {
	db *sql.DB
}

// NewExpenseRepo constructs an ExpenseRepo with the given DB handle.
func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

const expenseCols = `id, description, amount, category, paid_to, method, spent_on, created_at`

// Create inserts an expense and populates its generated ID.
func (r *ExpenseRepo) Create(ctx context.Context, e *model.Expense) error {
	const q = `INSERT INTO expenses (description, amount, category, paid_to, method, spent_on)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		e.Description, e.Amount, e.Category, e.PaidTo, e.Method, e.SpentOn)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return nil
}

// List returns all expenses, most recent spend first.
func (r *ExpenseRepo) List(ctx context.Context) ([]model.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+expenseCols+` FROM expenses ORDER BY spent_on DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Expense
	for rows.Next() {
		var e model.Expense
		if err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Category,
			&e.PaidTo, &e.Method, &e.SpentOn, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetByID retrieves an expense by primary key.
func (r *ExpenseRepo) GetByID(ctx context.Context, id uint64) (*model.Expense, error) {
	var e model.Expense
	err := r.db.QueryRowContext(ctx, `SELECT `+expenseCols+` FROM expenses WHERE id = ?`, id).
		Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &e.PaidTo, &e.Method, &e.SpentOn, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

// Update replaces all fields of an expense.
func (r *ExpenseRepo) Update(ctx context.Context, e *model.Expense) error {
	const q = `UPDATE expenses
	           SET description = ?, amount = ?, category = ?, paid_to = ?, method = ?, spent_on = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		e.Description, e.Amount, e.Category, e.PaidTo, e.Method, e.SpentOn, e.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}

// Delete removes an expense.
func (r *ExpenseRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrExpenseNotFound
	}
	return nil
}
