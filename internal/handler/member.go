package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/monitoring"
	"github.com/evolvehq/studyspace/internal/repository"
)

// MemberHandler serves the member directory.
type MemberHandler struct {
	Members *repository.MemberRepo
	Codes   *repository.CounterRepo
	Users   *repository.UserRepo
	Logs    *repository.LogRepo
}

func NewMemberHandler(m *repository.MemberRepo, codes *repository.CounterRepo,
	u *repository.UserRepo, logs *repository.LogRepo) *MemberHandler {
	return &MemberHandler{Members: m, Codes: codes, Users: u, Logs: logs}
}

type memberReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	ExamPrep string `json:"exam_prep"`
}

func (r *memberReq) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name required"
	}
	if strings.TrimSpace(r.Phone) == "" {
		return "phone required"
	}
	return ""
}

// List returns all members, newest first.
func (h *MemberHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	members, err := h.Members.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list members failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

// Create registers a member, minting the immutable EVOLVE code from
// the monthly counter before the insert.
func (h *MemberHandler) Create(c echo.Context) error {
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	code, err := h.Codes.Next(ctx, repository.ScopeMember, time.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "mint member code failed"})
	}
	monitoring.RecordCodeMint(repository.ScopeMember)

	m := &model.Member{
		MemberID: code,
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		ExamPrep: strings.TrimSpace(req.ExamPrep),
	}
	if err := h.Members.Create(ctx, m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create member failed"})
	}

	h.audit(c, "CREATE", m.MemberID, fmt.Sprintf("Registered member %s", m.Name))
	return c.JSON(http.StatusCreated, m)
}

// Update replaces the mutable fields; the EVOLVE code never changes.
func (h *MemberHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	m := &model.Member{
		ID:       id,
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		ExamPrep: strings.TrimSpace(req.ExamPrep),
	}
	if err := h.Members.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update member failed"})
	}

	h.audit(c, "UPDATE", fmt.Sprintf("%d", id), fmt.Sprintf("Updated member %s", m.Name))
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete hard-deletes a member. Subscriptions referencing the member
// stay in place as history.
func (h *MemberHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Members.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrMemberNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete member failed"})
	}

	h.audit(c, "DELETE", fmt.Sprintf("%d", id), "Deleted member")
	return c.NoContent(http.StatusNoContent)
}

func (h *MemberHandler) audit(c echo.Context, action, entityID, details string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Logs.Append(ctx, action, "Member", entityID, details, actor(ctx, h.Users, c)); err != nil {
		log.Printf("member: audit append failed: %v", err)
	}
}
