package pricing

// Changes lists providers whose found status differs from a previous run.
type Changes struct {
	NewlyFound    []string `json:"newly_found,omitempty" yaml:"newly_found,omitempty"`
	NoLongerFound []string `json:"no_longer_found,omitempty" yaml:"no_longer_found,omitempty"`
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.NewlyFound) == 0 && len(c.NoLongerFound) == 0
}

// Compare returns the providers in current whose found status changed since previous,
// in current's order. Providers missing from previous are not changes.
func Compare(previous, current []Outcome) Changes {
	found := make(map[string]bool, len(previous))
	for _, o := range previous {
		found[o.Provider] = o.Found
	}

	var changes Changes
	for _, o := range current {
		was, ok := found[o.Provider]
		if !ok || was == o.Found {
			continue
		}
		if o.Found {
			changes.NewlyFound = append(changes.NewlyFound, o.Provider)
		} else {
			changes.NoLongerFound = append(changes.NoLongerFound, o.Provider)
		}
	}
	return changes
}
