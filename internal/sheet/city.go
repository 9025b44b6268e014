package sheet

import (
	"regexp"
	"strings"
)

var (
	postalCodePattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	regionPattern     = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

// DeriveCity guesses the city from a free-text, comma separated address.
//
// The second-to-last segment is used unless it looks like a postal code or a
// two letter state abbreviation, in which case the third-to-last segment is
// tried under the same rules. Addresses with a single segment yield "".
func DeriveCity(address string) string {
	parts := strings.Split(address, ",")
	if len(parts) < 2 {
		return ""
	}

	candidate := strings.TrimSpace(parts[len(parts)-2])
	if !looksLikeRegion(candidate) {
		return candidate
	}
	if len(parts) < 3 {
		return ""
	}

	candidate = strings.TrimSpace(parts[len(parts)-3])
	if looksLikeRegion(candidate) {
		return ""
	}
	return candidate
}

func looksLikeRegion(value string) bool {
	return postalCodePattern.MatchString(value) || regionPattern.MatchString(value)
}
