package provider

import (
	"strings"
)

// KeySeparator joins the fields of a composite key.
const KeySeparator = " - "

// ServiceRecord is one row of the government service list.
type ServiceRecord struct {
	ProviderName string `json:"provider_name"`
	ServiceName  string `json:"service_name"`
	Suburb       string `json:"suburb"`
	CareType     string `json:"care_type"`
	PostalCode   string `json:"postal_code,omitempty"`

	// Row holds every column of the source row, keyed by header, for passthrough output.
	Row map[string]string `json:"-"`
}

// Key returns the record's composite match key.
func (r ServiceRecord) Key() string {
	return CompositeKey(r.ServiceName, r.ProviderName, r.Suburb)
}

// Complete reports whether all three key fields are present. Incomplete records are
// still matched; they just match worse.
func (r ServiceRecord) Complete() bool {
	return normalize(r.ServiceName) != "" && normalize(r.ProviderName) != "" && normalize(r.Suburb) != ""
}

// Rating is one row of the star-ratings extract.
type Rating struct {
	ServiceName  string            `json:"service_name"`
	ProviderName string            `json:"provider_name"`
	Suburb       string            `json:"service_suburb"`
	Values       map[string]string `json:"values"`
}

// Key returns the rating's composite match key.
func (r Rating) Key() string {
	return CompositeKey(r.ServiceName, r.ProviderName, r.Suburb)
}

// Location identifies a provider at a suburb and postcode.
type Location struct {
	Provider string `json:"provider"`
	Suburb   string `json:"suburb"`
	Postcode string `json:"postcode"`
}

// CompositeKey lowercases and trims each field and joins them with KeySeparator.
// The key is only used for approximate matching, never as an identity.
func CompositeKey(serviceName, providerName, suburb string) string {
	return normalize(serviceName) + KeySeparator + normalize(providerName) + KeySeparator + normalize(suburb)
}

// CareTypeMatches reports whether careType equals any of want, ignoring case and
// surrounding whitespace.
func CareTypeMatches(careType string, want []string) bool {
	ct := normalize(careType)
	for _, w := range want {
		if ct == normalize(w) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
