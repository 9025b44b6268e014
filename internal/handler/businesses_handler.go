package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/dto"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
	"github.com/majorossy/phreshfoods.com-sub003/internal/service"
)

// BusinessesHandler exposes the public directory endpoints.
type BusinessesHandler struct {
	service     *service.DirectoryService
	defaultUnit string
}

// NewBusinessesHandler creates a new handler instance. defaultUnit applies when
// a request does not name a unit.
func NewBusinessesHandler(service *service.DirectoryService, defaultUnit string) *BusinessesHandler {
	return &BusinessesHandler{service: service, defaultUnit: defaultUnit}
}

// List handles GET /businesses requests.
func (h *BusinessesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:       strings.TrimSpace(c.QueryParam("q")),
		City:    strings.TrimSpace(c.QueryParam("city")),
		Unit:    strings.ToLower(strings.TrimSpace(c.QueryParam("unit"))),
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
	}
	if filter.Unit == "" {
		filter.Unit = h.defaultUnit
	}
	if filter.Unit != "" && filter.Unit != dto.UnitKilometers && filter.Unit != dto.UnitMiles {
		return Error(c, http.StatusBadRequest, "invalid unit (use km or mi)")
	}

	latStr := strings.TrimSpace(c.QueryParam("lat"))
	lngStr := strings.TrimSpace(c.QueryParam("lng"))
	if latStr != "" || lngStr != "" {
		near, err := parseCoordinate(latStr, lngStr)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid lat/lng")
		}
		filter.Near = near
	}

	if radiusStr := strings.TrimSpace(c.QueryParam("radius_km")); radiusStr != "" {
		radius, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || radius < 0 {
			return Error(c, http.StatusBadRequest, "invalid radius_km")
		}
		if filter.Near == nil {
			return Error(c, http.StatusBadRequest, "radius_km requires lat and lng")
		}
		filter.RadiusKm = radius
	}

	result, err := h.service.ListBusinesses(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list businesses")
	}

	return Success(c, http.StatusOK, "businesses retrieved", result)
}

// Cities handles GET /cities requests.
func (h *BusinessesHandler) Cities(c echo.Context) error {
	cities, err := h.service.Cities(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list cities")
	}
	return Success(c, http.StatusOK, "cities retrieved", cities)
}

func parseCoordinate(latStr, lngStr string) (*geo.Coordinate, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, err
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, err
	}
	coord := geo.Coordinate{Lat: lat, Lon: lng}
	if !coord.Valid() {
		return nil, strconv.ErrRange
	}
	return &coord, nil
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
