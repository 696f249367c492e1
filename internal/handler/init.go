package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/config"
	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/repository"
)

// Default admin credentials seeded on a fresh install. Meant to be
// changed right after the first login.
const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "admin123"
)

// InitHandler seeds a fresh deployment: the default branch, the full
// seat block, and an initial Admin account. Every step is idempotent,
// so calling /init repeatedly is harmless.
type InitHandler struct {
	Cfg       config.Config
	Seats     *repository.SeatRepo
	Users     *repository.UserRepo
	Locations *repository.LocationRepo
}

func NewInitHandler(cfg config.Config, seats *repository.SeatRepo,
	users *repository.UserRepo, locations *repository.LocationRepo) *InitHandler {
	return &InitHandler{Cfg: cfg, Seats: seats, Users: users, Locations: locations}
}

// Seed provisions whatever is missing and reports what it did.
func (h *InitHandler) Seed(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	locationID, err := h.Locations.EnsureDefault(ctx, "EVOLVE Study Space", "Main Branch")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision location failed"})
	}

	seatsCreated := 0
	count, err := h.Seats.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count seats failed"})
	}
	if count == 0 {
		if err := h.Seats.ProvisionAll(ctx, h.Cfg.SeatCount); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "provision seats failed"})
		}
		seatsCreated = h.Cfg.SeatCount
	}

	adminCreated := false
	users, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "count users failed"})
	}
	if users == 0 {
		_, err := h.Users.Create(ctx, defaultAdminEmail, defaultAdminPassword,
			"Administrator", model.RoleAdmin, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create admin failed"})
		}
		adminCreated = true
	}

	return c.JSON(http.StatusOK, echo.Map{
		"location_id":   locationID,
		"seats_created": seatsCreated,
		"admin_created": adminCreated,
	})
}
