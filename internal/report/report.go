package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Row is one result line with a fixed column layout.
type Row interface {
	CSVHeader() []string
	CSVRecord() []string
}

// Reporter records result rows.
type Reporter interface {
	// Report stores or prints rows in order
	Report(rows []Row) error
}

// Rows converts a typed slice to []Row.
func Rows[T Row](items []T) []Row {
	rows := make([]Row, len(items))
	for i, item := range items {
		rows[i] = item
	}
	return rows
}

// CSVReporter appends rows to a CSV file.
type CSVReporter struct {
	path string
}

// NewCSVReporter creates a reporter appending to path.
func NewCSVReporter(path string) *CSVReporter {
	return &CSVReporter{path: path}
}

// Report appends rows, writing the first row's header if the file is new or empty.
func (r *CSVReporter) Report(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening report: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close() // nolint:errcheck
		return fmt.Errorf("checking report: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(rows[0].CSVHeader()); err != nil {
			f.Close() // nolint:errcheck
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row.CSVRecord()); err != nil {
			f.Close() // nolint:errcheck
			return fmt.Errorf("writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() // nolint:errcheck
		return fmt.Errorf("flushing report: %w", err)
	}

	return f.Close()
}

// DryRunReporter prints what would be logged.
type DryRunReporter struct {
	out io.Writer
}

// NewDryRunReporter creates a new dry-run reporter writing to out (stdout when nil)
func NewDryRunReporter(out io.Writer) *DryRunReporter {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunReporter{out: out}
}

// Report prints each row as header: value pairs
func (r *DryRunReporter) Report(rows []Row) error {
	for i, row := range rows {
		if _, err := fmt.Fprintf(r.out, "--- Row %d/%d ---\n%s\n\n", i+1, len(rows), formatRow(row)); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(row Row) string {
	header := row.CSVHeader()
	record := row.CSVRecord()
	var b strings.Builder
	for i, h := range header {
		if i >= len(record) || record[i] == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", h, record[i])
	}
	return strings.TrimSuffix(b.String(), "\n")
}
