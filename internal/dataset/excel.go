package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/agedcare-docs/internal/provider"
)

// Column names used by the service list and the star-ratings extract.
const (
	ColProviderName  = "Provider Name"
	ColServiceName   = "Service Name"
	ColSuburb        = "Suburb"
	ColCareType      = "Care Type"
	ColPostalCode    = "Postal Code"
	ColServiceSuburb = "Service Suburb"
)

// DefaultRatingsSheet is the star-ratings extract's data sheet (the first is a cover page).
const DefaultRatingsSheet = 1

// ErrMissingColumn is returned when a required column is absent from a header row.
var ErrMissingColumn = errors.New("missing column")

// Table is a header row plus its data rows. Every row has len(Header) cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of name in the header, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// columns resolves required names to their indexes.
func (t *Table) columns(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		idx[i] = t.Column(name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, name)
		}
	}
	return idx, nil
}

// record maps a row onto the header.
func (t *Table) record(row []string) map[string]string {
	m := make(map[string]string, len(t.Header))
	for i, h := range t.Header {
		m[h] = row[i]
	}
	return m
}

// ServiceList is the parsed government service list.
type ServiceList struct {
	Header   []string
	Services []provider.ServiceRecord
}

// LoadServiceList reads the first sheet of the service-list workbook. The header is the
// first row containing a "Provider Name" cell; banner rows above it are skipped.
func LoadServiceList(path string) (*ServiceList, error) {
	t, err := readSheet(path, 0, ColProviderName)
	if err != nil {
		return nil, err
	}

	cols, err := t.columns(ColProviderName, ColServiceName, ColSuburb, ColCareType)
	if err != nil {
		return nil, fmt.Errorf("service list %s: %w", path, err)
	}
	postal := t.Column(ColPostalCode)

	list := &ServiceList{Header: t.Header}
	for _, row := range t.Rows {
		rec := provider.ServiceRecord{
			ProviderName: strings.TrimSpace(row[cols[0]]),
			ServiceName:  strings.TrimSpace(row[cols[1]]),
			Suburb:       strings.TrimSpace(row[cols[2]]),
			CareType:     strings.TrimSpace(row[cols[3]]),
			Row:          t.record(row),
		}
		if postal >= 0 {
			rec.PostalCode = strings.TrimSpace(row[postal])
		}
		list.Services = append(list.Services, rec)
	}
	return list, nil
}

// LoadRatings reads the star-ratings extract from the sheet at sheetIndex.
func LoadRatings(path string, sheetIndex int) ([]provider.Rating, error) {
	t, err := readSheet(path, sheetIndex, ColServiceName)
	if err != nil {
		return nil, err
	}

	cols, err := t.columns(ColServiceName, ColProviderName, ColServiceSuburb)
	if err != nil {
		return nil, fmt.Errorf("ratings %s: %w", path, err)
	}

	ratings := make([]provider.Rating, 0, len(t.Rows))
	for _, row := range t.Rows {
		ratings = append(ratings, provider.Rating{
			ServiceName:  strings.TrimSpace(row[cols[0]]),
			ProviderName: strings.TrimSpace(row[cols[1]]),
			Suburb:       strings.TrimSpace(row[cols[2]]),
			Values:       t.record(row),
		})
	}
	return ratings, nil
}

// readSheet loads one sheet and locates its header by the marker column.
func readSheet(path string, sheetIndex int, marker string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook %s: %w", path, err)
	}
	defer f.Close() // nolint:errcheck

	sheets := f.GetSheetList()
	if sheetIndex < 0 || sheetIndex >= len(sheets) {
		return nil, fmt.Errorf("workbook %s has %d sheets, want index %d", path, len(sheets), sheetIndex)
	}

	rows, err := f.GetRows(sheets[sheetIndex])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[sheetIndex], err)
	}
	return tableFromRows(rows, marker)
}

// tableFromRows finds the header row and pads or trims every data row to its width.
// Blank rows are dropped.
func tableFromRows(rows [][]string, marker string) (*Table, error) {
	start := -1
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == marker {
				start = i
				break
			}
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: no header row with %q", ErrMissingColumn, marker)
	}

	header := make([]string, len(rows[start]))
	for i, h := range rows[start] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Header: header}
	for _, row := range rows[start+1:] {
		if blank(row) {
			continue
		}
		cells := make([]string, len(header))
		copy(cells, row)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// WriteXLSX writes header and rows to a single-sheet workbook using a stream writer.
func WriteXLSX(path, sheet string, header []string, rows [][]string) error {
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("creating stream writer: %w", err)
	}

	for i, row := range append([][]string{header}, rows...) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	f.SetActiveSheet(index)
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("removing default sheet: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// WriteTable writes to an .xlsx workbook or a CSV file depending on the extension.
func WriteTable(path string, header []string, rows [][]string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return WriteXLSX(path, "", header, rows)
	}
	return WriteCSV(path, header, rows)
}
