package pricing

import "strings"

// SearchAttempt is one query and the result links inspected for it, in order.
type SearchAttempt struct {
	Query string   `json:"query"`
	Links []string `json:"links,omitempty"`
}

// Outcome is the terminal result of the chain for one provider.
//
// Tried and Attempts are filled in both cases. Record only exposes Tried for
// outcomes that were not found.
type Outcome struct {
	Provider       string          `json:"provider"`
	Found          bool            `json:"found"`
	URL            string          `json:"url,omitempty"`
	Strategy       string          `json:"strategy"`
	Query          string          `json:"query,omitempty"`
	DownloadedPath string          `json:"downloaded_path,omitempty"`
	Tried          []string        `json:"tried"`
	Attempts       []SearchAttempt `json:"attempts"`
}

// Record is the per-provider output row consumed by reports and spreadsheets.
type Record struct {
	Provider       string   `json:"provider" yaml:"provider"`
	URL            string   `json:"url,omitempty" yaml:"url,omitempty"`
	Strategy       string   `json:"strategy" yaml:"strategy"`
	Query          string   `json:"query,omitempty" yaml:"query,omitempty"`
	Tried          []string `json:"tried,omitempty" yaml:"tried,omitempty"`
	DownloadedPath string   `json:"downloaded_path,omitempty" yaml:"downloaded_path,omitempty"`
}

// Record converts the outcome to its output row.
func (o Outcome) Record() Record {
	if !o.Found {
		return Record{
			Provider: o.Provider,
			Strategy: StrategyNotFound,
			Tried:    append([]string(nil), o.Tried...),
		}
	}
	return Record{
		Provider:       o.Provider,
		URL:            o.URL,
		Strategy:       o.Strategy,
		Query:          o.Query,
		DownloadedPath: o.DownloadedPath,
	}
}

// CSVHeader implements report.Row.
func (r Record) CSVHeader() []string {
	return []string{"provider", "url", "strategy", "query", "tried", "downloaded_path"}
}

// CSVRecord implements report.Row. Tried queries share one cell.
func (r Record) CSVRecord() []string {
	return []string{r.Provider, r.URL, r.Strategy, r.Query, strings.Join(r.Tried, " | "), r.DownloadedPath}
}
