package handler

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/evolvehq/studyspace/internal/repository"
)

// SettingHandler serves the admin key-value settings page.
type SettingHandler struct {
	Settings *repository.SettingRepo
	Users    *repository.UserRepo
	Logs     *repository.LogRepo
}

func NewSettingHandler(s *repository.SettingRepo, u *repository.UserRepo, logs *repository.LogRepo) *SettingHandler {
	return &SettingHandler{Settings: s, Users: u, Logs: logs}
}

// Get returns every setting as a flat map.
func (h *SettingHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	settings, err := h.Settings.All(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load settings failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": settings})
}

// Put upserts the submitted keys. Keys absent from the body are left
// untouched; there is no delete.
func (h *SettingHandler) Put(c echo.Context) error {
	var body map[string]string
	if err := c.Bind(&body); err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "non-empty settings map required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	keys := make([]string, 0, len(body))
	for k := range body {
		if strings.TrimSpace(k) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "empty setting key"})
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := h.Settings.Upsert(ctx, k, body[k]); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save settings failed"})
		}
	}

	details := fmt.Sprintf("Updated settings: %s", strings.Join(keys, ", "))
	if err := h.Logs.Append(ctx, "UPDATE", "Setting", "", details, actor(ctx, h.Users, c)); err != nil {
		log.Printf("setting: audit append failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": len(keys)})
}
