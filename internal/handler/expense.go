package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/repository"
)

// ExpenseHandler serves the operating-cost ledger. Routes are mounted
// behind RequireRole(Manager, Admin).
type ExpenseHandler struct {
	Expenses *repository.ExpenseRepo
	Users    *repository.UserRepo
	Logs     *repository.LogRepo
}

func NewExpenseHandler(e *repository.ExpenseRepo, u *repository.UserRepo, logs *repository.LogRepo) *ExpenseHandler {
	return &ExpenseHandler{Expenses: e, Users: u, Logs: logs}
}

type expenseReq struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	PaidTo      string `json:"paid_to"`
	Method      string `json:"method"`
	SpentOn     string `json:"spent_on"` // 2006-01-02
}

func (r *expenseReq) parse() (*model.Expense, string) {
	if strings.TrimSpace(r.Description) == "" {
		return nil, "description required"
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(r.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, "invalid amount"
	}
	spent, err := time.Parse("2006-01-02", r.SpentOn)
	if err != nil {
		return nil, "spent_on must be YYYY-MM-DD"
	}
	return &model.Expense{
		Description: strings.TrimSpace(r.Description),
		Amount:      amount,
		Category:    strings.TrimSpace(r.Category),
		PaidTo:      strings.TrimSpace(r.PaidTo),
		Method:      strings.TrimSpace(r.Method),
		SpentOn:     spent,
	}, ""
}

// List returns all expenses, most recent spend first.
func (h *ExpenseHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	expenses, err := h.Expenses.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list expenses failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"expenses": expenses})
}

// Create records an expense.
func (h *ExpenseHandler) Create(c echo.Context) error {
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Expenses.Create(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create expense failed"})
	}

	h.audit(c, "CREATE", e.ID, fmt.Sprintf("Recorded expense %s (%s)", e.Description, e.Amount))
	return c.JSON(http.StatusCreated, e)
}

// Update replaces all fields of an expense.
func (h *ExpenseHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	e, msg := req.parse()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	e.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Expenses.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update expense failed"})
	}

	h.audit(c, "UPDATE", id, fmt.Sprintf("Updated expense %s", e.Description))
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete removes an expense.
func (h *ExpenseHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Expenses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "expense not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete expense failed"})
	}

	h.audit(c, "DELETE", id, "Deleted expense")
	return c.NoContent(http.StatusNoContent)
}

func (h *ExpenseHandler) audit(c echo.Context, action string, id uint64, details string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	entityID := fmt.Sprintf("%d", id)
	if err := h.Logs.Append(ctx, action, "Expense", entityID, details, actor(ctx, h.Users, c)); err != nil {
		log.Printf("expense: audit append failed: %v", err)
	}
}
