package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/repository"
)

// LogHandler exposes the audit trail to Admins.
type LogHandler struct {
	Logs *repository.LogRepo
}

func NewLogHandler(logs *repository.LogRepo) *LogHandler { return &LogHandler{Logs: logs} }

// List returns the audit trail, newest first.
func (h *LogHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	logs, err := h.Logs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list logs failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"logs": logs})
}
