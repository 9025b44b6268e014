package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/config"
)

// ConfigHandler serves the public map settings.
type ConfigHandler struct {
	settings config.MapSettings
}

// NewConfigHandler copies settings so later mutation of the source has no effect.
func NewConfigHandler(settings *config.MapSettings) *ConfigHandler {
	h := &ConfigHandler{}
	if settings != nil {
		h.settings = *settings
	}
	return h
}

// Get handles GET /config requests.
func (h *ConfigHandler) Get(c echo.Context) error {
	return Success(c, http.StatusOK, "config retrieved", h.settings)
}

