package entity

import "github.com/majorossy/phreshfoods.com-sub003/internal/geo"

// NotAvailable marks a field that was absent or could not be resolved.
const NotAvailable = "N/A"

// Business represents a shop listed in the directory.
type Business struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Rating     string `json:"rating"`
	Phone      string `json:"phone"`
	Website    string `json:"website"`
	PlaceID    string `json:"place_id"`
	Logo       string `json:"logo"`
	ImageOne   string `json:"image_one"`
	ImageTwo   string `json:"image_two"`
	ImageThree string `json:"image_three"`
	Twitter    string `json:"twitter"`
	Facebook   string `json:"facebook"`
	Instagram  string `json:"instagram"`

	Location *geo.Coordinate `json:"location,omitempty"`

	// Derived by the normalizer; empty when the raw value cannot be parsed.
	PhoneE164  string `json:"phone_e164,omitempty"`
	WebsiteURL string `json:"website_url,omitempty"`
}

// Images returns the non-empty image references in column order.
func (b Business) Images() []string {
	images := make([]string, 0, 3)
	for _, ref := range []string{b.ImageOne, b.ImageTwo, b.ImageThree} {
		if ref != "" {
			images = append(images, ref)
		}
	}
	return images
}

// Listing is a business enriched with its distance from the requested origin.
type Listing struct {
	Business
	Distance *float64 `json:"distance,omitempty"`
	Unit     string   `json:"unit,omitempty"`
}
