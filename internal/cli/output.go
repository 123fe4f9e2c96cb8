package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/pfrederiksen/agedcare-docs/internal/compliance"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/pricing"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ComplianceRow is one provider location's compliance outcome.
type ComplianceRow struct {
	compliance.Result `yaml:",inline"`
	Error             string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary counts a run's results.
type Summary struct {
	Total     int `json:"total" yaml:"total"`
	Succeeded int `json:"succeeded" yaml:"succeeded"`
	Failed    int `json:"failed" yaml:"failed"`
}

// OutputResult contains data to be output
type OutputResult struct {
	Command    string           `json:"command" yaml:"command"`
	CheckedAt  time.Time        `json:"checked_at" yaml:"checked_at"`
	Summary    Summary          `json:"summary" yaml:"summary"`
	Pricing    []pricing.Record `json:"pricing,omitempty" yaml:"pricing,omitempty"`
	Compliance []ComplianceRow  `json:"compliance,omitempty" yaml:"compliance,omitempty"`
	Files      []string         `json:"files,omitempty" yaml:"files,omitempty"`
	RunFile    string           `json:"run_file,omitempty" yaml:"run_file,omitempty"`
	// PreviousRun is the run Changes compares against.
	PreviousRun string           `json:"previous_run,omitempty" yaml:"previous_run,omitempty"`
	Changes     *pricing.Changes `json:"changes,omitempty" yaml:"changes,omitempty"`
	Metrics     *logger.Snapshot `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatYAML:
		return writeYAML(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeYAML outputs results as YAML
func writeYAML(w io.Writer, result *OutputResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	for _, rec := range result.Pricing {
		if rec.URL == "" {
			fmt.Fprintf(w, "NOT FOUND: %s\n", rec.Provider)
			if verbose {
				for _, q := range rec.Tried {
					fmt.Fprintf(w, "     Tried: %s\n", q)
				}
			}
			continue
		}
		fmt.Fprintf(w, "FOUND (%s): %s\n", rec.Strategy, rec.Provider)
		fmt.Fprintf(w, "     URL: %s\n", rec.URL)
		if verbose && rec.Query != "" {
			fmt.Fprintf(w, "     Query: %s\n", rec.Query)
		}
		if rec.DownloadedPath != "" {
			fmt.Fprintf(w, "     Saved: %s\n", rec.DownloadedPath)
		}
	}

	for _, row := range result.Compliance {
		if row.Error != "" {
			fmt.Fprintf(w, "FAILED: %s | %s | %s: %s\n", row.Provider, row.Suburb, row.Postcode, row.Error)
			continue
		}
		fmt.Fprintf(w, "DOWNLOADED: %s | %s | %s\n", row.Provider, row.Suburb, row.Postcode)
		fmt.Fprintf(w, "     Report: %s\n", row.ReportURL)
		if verbose {
			fmt.Fprintf(w, "     Saved: %s\n", row.LocalPath)
		}
	}

	if result.Changes != nil && !result.Changes.Empty() {
		fmt.Fprintln(w, "\nChanges since previous run:")
		for _, p := range result.Changes.NewlyFound {
			fmt.Fprintf(w, "  NEWLY FOUND: %s\n", p)
		}
		for _, p := range result.Changes.NoLongerFound {
			fmt.Fprintf(w, "  NO LONGER FOUND: %s\n", p)
		}
	}

	for _, f := range result.Files {
		fmt.Fprintf(w, "Wrote %s\n", f)
	}

	fmt.Fprintf(w, "\nTotal: %d, succeeded: %d, failed: %d\n",
		result.Summary.Total, result.Summary.Succeeded, result.Summary.Failed)

	if verbose && result.Metrics != nil {
		fmt.Fprintln(w, "\nMetrics:")
		for _, name := range result.Metrics.Names() {
			fmt.Fprintf(w, "  %s: %d\n", name, result.Metrics.Counters[name])
		}
		for _, name := range sortedKeys(result.Metrics.Gauges) {
			fmt.Fprintf(w, "  %s: %.1f\n", name, result.Metrics.Gauges[name])
		}
		for _, name := range sortedKeys(result.Metrics.Timings) {
			t := result.Metrics.Timings[name]
			fmt.Fprintf(w, "  %s: %d calls, avg %s, max %s\n", name, t.Count, t.Average, t.Max)
		}
	}

	return nil
}
