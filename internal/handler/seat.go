package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/model"
	"github.com/evolvehq/studyspace/internal/monitoring"
	"github.com/evolvehq/studyspace/internal/repository"
)

// SeatHandler serves the seat map.
type SeatHandler struct {
	Seats *repository.SeatRepo
}

func NewSeatHandler(s *repository.SeatRepo) *SeatHandler { return &SeatHandler{Seats: s} }

// List returns every seat in seat-number order and refreshes the
// occupancy gauge as a side effect.
func (h *SeatHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	seats, err := h.Seats.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list seats failed"})
	}

	occupied := 0
	for _, s := range seats {
		if s.Status == model.SeatOccupied {
			occupied++
		}
	}
	monitoring.SetOccupiedSeats(occupied)

	return c.JSON(http.StatusOK, echo.Map{
		"seats":    seats,
		"total":    len(seats),
		"occupied": occupied,
		"vacant":   len(seats) - occupied,
	})
}
