package service

import (
	"net/url"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/majorossy/phreshfoods.com-sub003/internal/entity"
)

const (
	defaultPhoneRegion = "US"
	trackingPrefix     = "utm_"
)

var idnaProfile = idna.Lookup

// Normalizer derives display-ready contact fields from raw sheet values. The
// raw values are left untouched.
type Normalizer struct {
	DefaultRegion string
}

// NewNormalizer builds a normalizer parsing national numbers for region.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = defaultPhoneRegion
	}
	return &Normalizer{DefaultRegion: region}
}

// Apply returns a copy of b with PhoneE164 and WebsiteURL populated when the
// raw values can be parsed.
func (n *Normalizer) Apply(b entity.Business) entity.Business {
	b.PhoneE164 = normalizePhone(b.Phone, n.DefaultRegion)
	b.WebsiteURL = normalizeWebsite(b.Website)
	return b
}

// ApplyAll normalizes every record, keeping order.
func (n *Normalizer) ApplyAll(businesses []entity.Business) []entity.Business {
	out := make([]entity.Business, len(businesses))
	for i, b := range businesses {
		out[i] = n.Apply(b)
	}
	return out
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == entity.NotAvailable {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func normalizeWebsite(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == entity.NotAvailable {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	host, err := idnaProfile.ToASCII(strings.ToLower(u.Hostname()))
	if err != nil || !strings.Contains(host, ".") {
		return ""
	}
	if port := u.Port(); port != "" {
		host += ":" + port
	}
	u.Host = host
	stripTracking(u)
	return u.String()
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}
