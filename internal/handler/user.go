package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/config"
	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/repository"
	"github.com/evolvehq/studyspace/internal/utils"
)

// UserHandler manages back-office accounts. List/Create/Get/Delete are
// Admin-only; Update is reachable by any authenticated user but only
// lets non-Admins edit themselves.
type UserHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Logs   *repository.LogRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo,
	t *repository.TokenRepo, logs *repository.LogRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Tokens: t, Logs: logs}
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type updateUserReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	NewPassword     string `json:"new_password"`
	CurrentPassword string `json:"current_password"`
}

// List returns all accounts.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Get returns one account.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, u)
}

// Create adds a staff account with a validated role.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name required"})
	}
	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = model.RoleMember
	}
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be Admin, Manager or Member"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, strings.TrimSpace(req.Name), role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	h.audit(c, "CREATE", uid, fmt.Sprintf("Created %s account %s", role, req.Email))
	return c.JSON(http.StatusCreated, echo.Map{"id": uid, "email": req.Email, "name": req.Name, "role": role})
}

// Update branches on who is editing whom. A user editing themselves
// may change their name, and their password after proving the current
// one; email changes stay Admin-only. An Admin editing another account
// may reset its role or password; a reset revokes every refresh token
// that account holds.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	uid := currentUserID(c)
	role := currentRole(c)
	if id != uid && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if id == uid {
		return h.updateSelf(c, id, role, req)
	}
	return h.adminReset(c, id, req)
}

func (h *UserHandler) updateSelf(c echo.Context, id uint64, role string, req updateUserReq) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if strings.TrimSpace(req.Role) != "" {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot change own role"})
	}
	if strings.TrimSpace(req.Email) != "" && role != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "email change requires Admin"})
	}

	var passwordHash string
	if req.NewPassword != "" {
		u, err := h.Users.GetByID(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		}
		if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password incorrect"})
		}
		passwordHash, err = utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
	}

	err := h.Users.UpdateProfile(ctx, id, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email), passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}

	h.audit(c, "UPDATE", id, "Updated own profile")
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

func (h *UserHandler) adminReset(c echo.Context, id uint64, req updateUserReq) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	newRole := strings.TrimSpace(req.Role)
	if newRole != "" && !model.ValidRole(newRole) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be Admin, Manager or Member"})
	}

	var passwordHash string
	if req.NewPassword != "" {
		var err error
		passwordHash, err = utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash password failed"})
		}
	}
	if newRole == "" && passwordHash == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role or new_password required"})
	}

	if err := h.Users.UpdateRoleAndPassword(ctx, id, newRole, passwordHash); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	if passwordHash != "" {
		// Force re-login everywhere after an admin reset.
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			log.Printf("user: revoke sessions after reset failed: %v", err)
		}
	}

	h.audit(c, "UPDATE", id, "Admin reset of role/password")
	return c.JSON(http.StatusOK, echo.Map{"updated": true})
}

// Delete removes an account. Deleting yourself is rejected so the
// last Admin cannot lock everyone out mid-session.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if id == currentUserID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete own account"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}

	h.audit(c, "DELETE", id, "Deleted user account")
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) audit(c echo.Context, action string, id uint64, details string) {
	ctx, cancel := reqCtx(c)
	defer cancel()
	entityID := fmt.Sprintf("%d", id)
	if err := h.Logs.Append(ctx, action, "User", entityID, details, actor(ctx, h.Users, c)); err != nil {
		log.Printf("user: audit append failed: %v", err)
	}
}
