package dataset

import (
	"strings"

	"github.com/pfrederiksen/agedcare-docs/internal/provider"
)

// DefaultCareTypes are the care types kept for provider lists.
var DefaultCareTypes = []string{"Residential Care", "Home Care"}

// FilterCareTypes keeps services whose care type equals one of want, ignoring case.
// An empty want keeps everything.
func FilterCareTypes(services []provider.ServiceRecord, want []string) []provider.ServiceRecord {
	if len(want) == 0 {
		return services
	}
	var out []provider.ServiceRecord
	for _, s := range services {
		if provider.CareTypeMatches(s.CareType, want) {
			out = append(out, s)
		}
	}
	return out
}

// FilterCareTypeContains keeps services whose care type contains substr, ignoring case.
func FilterCareTypeContains(services []provider.ServiceRecord, substr string) []provider.ServiceRecord {
	substr = strings.ToLower(substr)
	var out []provider.ServiceRecord
	for _, s := range services {
		if strings.Contains(strings.ToLower(s.CareType), substr) {
			out = append(out, s)
		}
	}
	return out
}

// UniqueProviders returns provider names in order of first appearance, skipping blanks.
func UniqueProviders(services []provider.ServiceRecord) []string {
	seen := make(map[string]bool)
	var names []string
	for _, s := range services {
		if s.ProviderName == "" || seen[s.ProviderName] {
			continue
		}
		seen[s.ProviderName] = true
		names = append(names, s.ProviderName)
	}
	return names
}

// UniqueLocations returns distinct (provider, suburb, postcode) triples in order of
// first appearance. Rows without a provider are skipped.
func UniqueLocations(services []provider.ServiceRecord) []provider.Location {
	seen := make(map[provider.Location]bool)
	var locs []provider.Location
	for _, s := range services {
		loc := provider.Location{Provider: s.ProviderName, Suburb: s.Suburb, Postcode: s.PostalCode}
		if loc.Provider == "" || seen[loc] {
			continue
		}
		seen[loc] = true
		locs = append(locs, loc)
	}
	return locs
}

// LocationRows renders locations as CSV rows under LocationHeader.
func LocationRows(locs []provider.Location) [][]string {
	rows := make([][]string, len(locs))
	for i, l := range locs {
		rows[i] = []string{l.Provider, l.Suburb, l.Postcode}
	}
	return rows
}

// LocationHeader is the header of a provider-location list.
var LocationHeader = []string{ColProviderName, ColSuburb, ColPostalCode}
