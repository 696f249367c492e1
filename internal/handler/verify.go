package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/repository"
	"github.com/evolvehq/studyspace/internal/service"
)

// VerifyHandler answers the front-desk membership check. The endpoint
// is public enough to sit behind the rate limiter and response cache.
type VerifyHandler struct {
	Members   *repository.MemberRepo
	Subs      *repository.SubscriptionRepo
	Seats     *repository.SeatRepo
	Locations *repository.LocationRepo
}

func NewVerifyHandler(m *repository.MemberRepo, subs *repository.SubscriptionRepo,
	seats *repository.SeatRepo, locations *repository.LocationRepo) *VerifyHandler {
	return &VerifyHandler{Members: m, Subs: subs, Seats: seats, Locations: locations}
}

// verifySub is the subscription part of the verify response, enriched
// with the seat number and branch name for the door screen.
type verifySub struct {
	model.Subscription
	SeatNumber uint32 `json:"seat_number,omitempty"`
	Location   string `json:"location,omitempty"`
}

type verifyResp struct {
	Valid        bool          `json:"valid"`
	Message      string        `json:"message"`
	Member       *model.Member `json:"member,omitempty"`
	Subscription *verifySub    `json:"subscription,omitempty"`
}

// qrPayload is the JSON a QR sticker encodes.
type qrPayload struct {
	MemberID string `json:"memberId"`
}

// Verify resolves a member by the strongest criterion supplied and
// reports whether they hold a live subscription. Lookup precedence:
// memberId, then email (exact), then phone (digit substring), then
// name (substring). The data parameter carries a scanned QR payload,
// either JSON with a memberId field or the raw code itself.
func (h *VerifyHandler) Verify(c echo.Context) error {
	memberID := strings.TrimSpace(c.QueryParam("memberId"))
	email := strings.TrimSpace(c.QueryParam("email"))
	phone := strings.TrimSpace(c.QueryParam("phone"))
	name := strings.TrimSpace(c.QueryParam("name"))

	if data := strings.TrimSpace(c.QueryParam("data")); data != "" && memberID == "" {
		var qr qrPayload
		if err := json.Unmarshal([]byte(data), &qr); err == nil && qr.MemberID != "" {
			memberID = qr.MemberID
		} else {
			memberID = data
		}
	}

	if memberID == "" && email == "" && phone == "" && name == "" {
		return c.JSON(http.StatusBadRequest, verifyResp{
			Valid: false, Message: "Provide memberId, email, phone or name",
		})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var (
		m   *model.Member
		err error
	)
	switch {
	case memberID != "":
		m, err = h.Members.GetByMemberID(ctx, memberID)
	case email != "":
		m, err = h.Members.GetByEmail(ctx, email)
	case phone != "":
		m, err = h.Members.FindByPhone(ctx, phone)
	default:
		m, err = h.Members.FindByName(ctx, name)
	}
	if err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, verifyResp{Valid: false, Message: "Member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	now := time.Now()
	if sub, err := h.Subs.ActiveByMember(ctx, m.ID); err == nil {
		if !now.After(service.EndOfDay(sub.EndDate)) {
			return c.JSON(http.StatusOK, verifyResp{
				Valid:        true,
				Message:      "Valid subscription",
				Member:       m,
				Subscription: h.enrich(c, sub),
			})
		}
		// Active in the table but past its end date; report as expired.
		return c.JSON(http.StatusOK, verifyResp{
			Valid:        false,
			Message:      "Subscription expired",
			Member:       m,
			Subscription: h.enrich(c, sub),
		})
	} else if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	if sub, err := h.Subs.LatestByMember(ctx, m.ID); err == nil {
		return c.JSON(http.StatusOK, verifyResp{
			Valid:        false,
			Message:      "Subscription expired",
			Member:       m,
			Subscription: h.enrich(c, sub),
		})
	} else if !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
	}

	return c.JSON(http.StatusOK, verifyResp{Valid: false, Message: "No subscription found", Member: m})
}

// enrich attaches the seat number and branch name; failures leave the
// extra fields empty rather than failing the verify.
func (h *VerifyHandler) enrich(c echo.Context, sub *model.Subscription) *verifySub {
	ctx, cancel := reqCtx(c)
	defer cancel()

	out := &verifySub{Subscription: *sub}
	if seat, err := h.Seats.GetByID(ctx, sub.SeatID); err == nil {
		out.SeatNumber = seat.SeatNumber
	}
	if loc, err := h.Locations.GetByID(ctx, sub.LocationID); err == nil {
		out.Location = loc.Name
	}
	return out
}

// searchHit is one autocomplete suggestion for the verify screen.
type searchHit struct {
	ID          uint64 `json:"id"`
	MemberID    string `json:"member_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DisplayText string `json:"display_text"`
}

// Search returns up to ten member hints matching the term as a
// substring of code, name, email or phone. Terms shorter than two
// characters return an empty list.
func (h *VerifyHandler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len(q) < 2 {
		return c.JSON(http.StatusOK, echo.Map{"results": []searchHit{}})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.Members.Search(ctx, q, 10)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	hits := make([]searchHit, 0, len(members))
	for _, m := range members {
		hits = append(hits, searchHit{
			ID:          m.ID,
			MemberID:    m.MemberID,
			Name:        m.Name,
			Email:       m.Email,
			Phone:       m.Phone,
			DisplayText: m.Name + " (" + m.MemberID + ")",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"results": hits})
}
