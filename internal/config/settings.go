package config

import (
	"fmt"
	"strings"

	"github.com/kkyr/fig"
)

const (
	settingsEnv  = "DIRECTORY"
	settingsFile = "directory.yaml"
)

// MapSettings holds the public presentation settings served to the map UI.
// It is loaded once at startup and treated as read-only afterwards.
type MapSettings struct {
	// Browser key for the maps SDK. Restricted by referrer, not a secret.
	MapsAPIKey string `fig:"maps_api_key" json:"maps_api_key"`
	MapID      string `fig:"map_id" json:"map_id,omitempty"`

	Center struct {
		Lat float64 `fig:"lat" default:"43.6591" json:"lat"`
		Lng float64 `fig:"lng" default:"-70.2568" json:"lng"`
	} `fig:"center" json:"center"`

	Zoom int `fig:"zoom" default:"9" json:"zoom"`
	// Allowed values: roadmap, satellite, hybrid, terrain
	Style string `fig:"style" default:"roadmap" json:"style"`
	// Allowed values: km, mi
	DistanceUnit string `fig:"distance_unit" default:"mi" json:"distance_unit"`
}

// LoadMapSettings reads directory.yaml from dir when present, then applies
// DIRECTORY_* environment overrides.
func LoadMapSettings(dir string) (*MapSettings, error) {
	settings := new(MapSettings)

	if dir == "" {
		dir = "."
	}
	err := fig.Load(settings,
		fig.Dirs(dir),
		fig.File(settingsFile),
		fig.AllowNoFile(),
		fig.UseEnv(settingsEnv),
	)
	if err != nil {
		return nil, fmt.Errorf("load map settings: %w", err)
	}
	return settings, settings.Validate()
}

// Validate checks enumerated values and coordinate ranges.
func (s *MapSettings) Validate() error {
	s.Style = strings.ToLower(strings.TrimSpace(s.Style))
	switch s.Style {
	case "roadmap", "satellite", "hybrid", "terrain":
	default:
		return fmt.Errorf("invalid map style: %s", s.Style)
	}

	s.DistanceUnit = strings.ToLower(strings.TrimSpace(s.DistanceUnit))
	if s.DistanceUnit != "km" && s.DistanceUnit != "mi" {
		return fmt.Errorf("invalid distance unit: %s", s.DistanceUnit)
	}
	if s.Center.Lat < -90 || s.Center.Lat > 90 || s.Center.Lng < -180 || s.Center.Lng > 180 {
		return fmt.Errorf("invalid map center: %v,%v", s.Center.Lat, s.Center.Lng)
	}
	if s.Zoom < 0 || s.Zoom > 22 {
		return fmt.Errorf("invalid zoom: %d", s.Zoom)
	}
	return nil
}
