package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/monitoring"
	"github.com/evolvehq/studyspace/internal/repository"
)

// WaitingHandler manages the FIFO waiting list.
type WaitingHandler struct {
	Waiting *repository.WaitingRepo
	Members *repository.MemberRepo
	Users   *repository.UserRepo
	Logs    *repository.LogRepo
}

func NewWaitingHandler(w *repository.WaitingRepo, m *repository.MemberRepo,
	u *repository.UserRepo, logs *repository.LogRepo) *WaitingHandler {
	return &WaitingHandler{Waiting: w, Members: m, Users: u, Logs: logs}
}

type waitingReq struct {
	MemberID      uint64 `json:"member_id"`
	StartDate     string `json:"start_date"` // desired start, 2006-01-02
	Duration      string `json:"duration"`
	Amount        string `json:"amount"`
	PaymentMethod string `json:"payment_method"` // cash | UPI
	UPICode       string `json:"upi_code"`
}

// List returns the queue in service order and refreshes the gauge.
func (h *WaitingHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	entries, err := h.Waiting.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list waiting failed"})
	}
	monitoring.SetWaitingLength(len(entries))
	return c.JSON(http.StatusOK, echo.Map{"waiting": entries, "length": len(entries)})
}

// Create appends a seat request. Repeat requests by the same member
// are allowed and there is no capacity limit.
func (h *WaitingHandler) Create(c echo.Context) error {
	var req waitingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MemberID == 0 || strings.TrimSpace(req.Duration) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "member_id and duration required"})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	method := strings.TrimSpace(req.PaymentMethod)
	if method != model.PaymentCash && method != model.PaymentUPI {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "payment_method must be cash or UPI"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Members.GetByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load member failed"})
	}

	entry := &model.WaitingEntry{
		MemberID:      req.MemberID,
		RequestedAt:   time.Now().UTC(),
		StartDate:     start,
		Duration:      strings.TrimSpace(req.Duration),
		Amount:        amount,
		PaymentMethod: method,
		UPICode:       strings.TrimSpace(req.UPICode),
	}
	if err := h.Waiting.Enqueue(ctx, entry); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enqueue failed"})
	}
	return c.JSON(http.StatusCreated, entry)
}

// Delete removes an entry explicitly, without serving it.
func (h *WaitingHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Waiting.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrWaitingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "waiting entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete waiting entry failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
