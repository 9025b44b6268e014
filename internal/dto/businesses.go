package dto

import (
	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
	"github.com/majorossy/phreshfoods.com-sub003/internal/geo"
)

// Distance units accepted by listing endpoints.
const (
	UnitKilometers = "km"
	UnitMiles      = "mi"
)

// ListFilter contains query parameters for business listing endpoints.
type ListFilter struct {
	Q        string
	City     string
	Near     *geo.Coordinate
	RadiusKm float64
	Unit     string
	Page     int
	PerPage  int
}

// ListResult is a page of listings together with the total match count.
type ListResult struct {
	Items   []entity.Listing `json:"items"`
	Total   int              `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}
