package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/agedcare-docs/internal/pricing"
)

// SortOrder represents the available sorting options for pricing output
type SortOrder string

const (
	SortByInput    SortOrder = "input"
	SortByProvider SortOrder = "provider"
	SortByStrategy SortOrder = "strategy"
)

// sortRecords orders pricing records for display. The result log and run file always
// keep input order.
func sortRecords(records []pricing.Record, order SortOrder) []pricing.Record {
	if order == SortByInput || order == "" {
		return records
	}

	sorted := append([]pricing.Record(nil), records...)
	switch order {
	case SortByProvider:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Provider) < strings.ToLower(sorted[j].Provider)
		})
	case SortByStrategy:
		sort.SliceStable(sorted, func(i, j int) bool {
			ri, rj := strategyRank(sorted[i].Strategy), strategyRank(sorted[j].Strategy)
			if ri != rj {
				return ri < rj
			}
			return strings.ToLower(sorted[i].Provider) < strings.ToLower(sorted[j].Provider)
		})
	}
	return sorted
}

// strategyRank puts broad-query hits first, keyword fallbacks next and misses last.
func strategyRank(strategy string) int {
	switch {
	case strategy == pricing.StrategyBroad:
		return 0
	case strategy == pricing.StrategySubLink:
		return 1
	case strategy == pricing.StrategyNotFound:
		return 3
	default:
		return 2
	}
}

func validSortOrder(order SortOrder) bool {
	switch order {
	case SortByInput, SortByProvider, SortByStrategy:
		return true
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
