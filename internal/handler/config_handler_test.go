package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/majorossy/phreshfoods.com-sub003/internal/config"
)

func TestConfigHandler_Get(t *testing.T) {
	settings := &config.MapSettings{MapsAPIKey: "browser-key", Zoom: 9, Style: "roadmap", DistanceUnit: "mi"}
	settings.Center.Lat = 43.6591
	settings.Center.Lng = -70.2568
	handler := NewConfigHandler(settings)
	settings.Zoom = 3

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/config", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload struct {
		Data config.MapSettings `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.MapsAPIKey != "browser-key" || payload.Data.Center.Lat != 43.6591 {
		t.Fatalf("unexpected settings: %+v", payload.Data)
	}
	if payload.Data.Zoom != 9 {
		t.Fatalf("expected settings to be copied at construction, got zoom %d", payload.Data.Zoom)
	}
}
