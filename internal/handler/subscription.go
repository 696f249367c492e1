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
	"github.com/evolvehq/studyspace/internal/service"
)

// SubscriptionHandler fronts the lifecycle coordinator.
type SubscriptionHandler struct {
	Lifecycle *service.Lifecycle
	Subs      *repository.SubscriptionRepo
	Payments  *repository.PaymentRepo
	Members   *repository.MemberRepo
	Locations *repository.LocationRepo
	Users     *repository.UserRepo
}

func NewSubscriptionHandler(lc *service.Lifecycle, subs *repository.SubscriptionRepo,
	pays *repository.PaymentRepo, members *repository.MemberRepo,
	locations *repository.LocationRepo, users *repository.UserRepo) *SubscriptionHandler {
	return &SubscriptionHandler{
		Lifecycle: lc, Subs: subs, Payments: pays,
		Members: members, Locations: locations, Users: users,
	}
}

type createSubReq struct {
	MemberID   uint64 `json:"member_id"`
	SeatNumber uint32 `json:"seat_number"`
	StartDate  string `json:"start_date"` // 2006-01-02
	Duration   string `json:"duration"`   // e.g. "1 month", "30 days"
	Amount     string `json:"amount"`
	Method     string `json:"method"` // cash | UPI
	UPICode    string `json:"upi_code"`
}

type changeSeatReq struct {
	SeatNumber uint32 `json:"seat_number"`
}

// List returns all subscriptions, newest first.
func (h *SubscriptionHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	subs, err := h.Subs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list subscriptions failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"subscriptions": subs})
}

// PaymentTrail returns one subscription's payment trail.
func (h *SubscriptionHandler) PaymentTrail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Subs.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load subscription failed"})
	}
	payments, err := h.Payments.ListBySubscription(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list payments failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}

// Create opens a subscription on a vacant seat with its first payment.
func (h *SubscriptionHandler) Create(c echo.Context) error {
	var req createSubReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MemberID == 0 || req.SeatNumber == 0 || strings.TrimSpace(req.Duration) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "member_id, seat_number and duration required"})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid amount"})
	}
	method := strings.TrimSpace(req.Method)
	if method != model.PaymentCash && method != model.PaymentUPI {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be cash or UPI"})
	}
	if method == model.PaymentUPI && strings.TrimSpace(req.UPICode) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "upi_code required for UPI payments"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Members.GetByID(ctx, req.MemberID); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load member failed"})
	}
	loc, err := h.Locations.Default(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no location provisioned; run /init"})
	}

	sub, err := h.Lifecycle.Create(ctx, service.CreateInput{
		MemberID:    req.MemberID,
		LocationID:  loc.ID,
		SeatNumber:  req.SeatNumber,
		StartDate:   start,
		Duration:    strings.TrimSpace(req.Duration),
		Amount:      amount,
		Method:      method,
		UPICode:     strings.TrimSpace(req.UPICode),
		PerformedBy: actor(ctx, h.Users, c),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPastStartDate), errors.Is(err, service.ErrInvalidAmount):
			monitoring.RecordLifecycleOp("create", "rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, repository.ErrSeatUnavailable):
			monitoring.RecordLifecycleOp("create", "rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat not available"})
		default:
			monitoring.RecordLifecycleOp("create", "error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create subscription failed"})
		}
	}
	monitoring.RecordLifecycleOp("create", "ok")
	return c.JSON(http.StatusCreated, sub)
}

// ChangeSeat moves a subscription onto a different vacant seat.
func (h *SubscriptionHandler) ChangeSeat(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req changeSeatReq
	if err := c.Bind(&req); err != nil || req.SeatNumber == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_number required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err = h.Lifecycle.ChangeSeat(ctx, id, req.SeatNumber, actor(ctx, h.Users, c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSubscriptionNotFound):
			monitoring.RecordLifecycleOp("change_seat", "rejected")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		case errors.Is(err, repository.ErrSeatUnavailable):
			monitoring.RecordLifecycleOp("change_seat", "rejected")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat not available"})
		default:
			monitoring.RecordLifecycleOp("change_seat", "error")
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "change seat failed"})
		}
	}
	monitoring.RecordLifecycleOp("change_seat", "ok")
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// End expires a subscription, frees its seat and promotes the
// earliest waiting-list entrant onto it when one exists.
func (h *SubscriptionHandler) End(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Lifecycle.End(ctx, id, actor(ctx, h.Users, c))
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			monitoring.RecordLifecycleOp("end", "rejected")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "subscription not found"})
		}
		monitoring.RecordLifecycleOp("end", "error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "end subscription failed"})
	}
	monitoring.RecordLifecycleOp("end", "ok")

	resp := echo.Map{"ended": true, "promoted": res.Promoted != nil}
	if res.Promoted != nil {
		resp["promoted_subscription"] = res.Promoted
	}
	return c.JSON(http.StatusOK, resp)
}
