package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/agedcare-docs/internal/provider"
)

// ReadCSV reads a CSV file with a header row. Rows are padded to the header width.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	return parseCSV(f)
}

func parseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(records) == 0 {
		return &Table{}, nil
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	t := &Table{Header: header}
	for _, rec := range records[1:] {
		if blank(rec) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, rec)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

// ReadProviderNames reads the "Provider Name" column, skipping blanks.
func ReadProviderNames(path string) ([]string, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(ColProviderName)
	if err != nil {
		return nil, fmt.Errorf("provider list %s: %w", path, err)
	}

	var names []string
	for _, row := range t.Rows {
		if name := strings.TrimSpace(row[cols[0]]); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ReadProviderLocations reads provider, suburb and postal code columns.
func ReadProviderLocations(path string) ([]provider.Location, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	cols, err := t.columns(ColProviderName, ColSuburb, ColPostalCode)
	if err != nil {
		return nil, fmt.Errorf("location list %s: %w", path, err)
	}

	var locs []provider.Location
	for _, row := range t.Rows {
		loc := provider.Location{
			Provider: strings.TrimSpace(row[cols[0]]),
			Suburb:   strings.TrimSpace(row[cols[1]]),
			Postcode: strings.TrimSpace(row[cols[2]]),
		}
		if loc.Provider == "" {
			continue
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// WriteCSV writes header and rows to path, creating parent directories.
func WriteCSV(path string, header []string, rows [][]string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close() // nolint:errcheck
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close() // nolint:errcheck
		return fmt.Errorf("writing rows: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
