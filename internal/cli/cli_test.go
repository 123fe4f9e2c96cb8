package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pfrederiksen/agedcare-docs/internal/search"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeServiceList(t *testing.T, dir string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close() // nolint:errcheck

	rows := [][]interface{}{
		{"Aged care service list"},
		{},
		{"Service Name", "Provider Name", "Care Type", "Suburb", "Postal Code"},
		{"Sunrise Lodge", "Sunrise Care", "Residential Care", "Parramatta", "2150"},
		{"Sunrise at Home", "Sunrise Care", "Home Care", "Parramatta", "2150"},
		{"Bay House", "Bay Health", "Residential Care", "Manly", "2095"},
		{"Cove Transition", "Cove Care", "Transition Care", "Ryde", "2112"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(dir, "service-list.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestProvidersCommand(t *testing.T) {
	dir := t.TempDir()
	list := writeServiceList(t, dir)

	out, err := execute(t, "providers", "--data-dir", dir, "--service-list", list, "--format", "json")
	require.NoError(t, err)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "providers", result.Command)
	assert.Equal(t, Summary{Total: 4, Succeeded: 3, Failed: 1}, result.Summary)
	assert.NotEmpty(t, result.RunFile)

	data, err := os.ReadFile(filepath.Join(dir, UniqueProvidersFile))
	require.NoError(t, err)
	assert.Equal(t, "Provider Name\nSunrise Care\nBay Health\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, LocationsFile))
	require.NoError(t, err)
	assert.Equal(t, "Provider Name,Suburb,Postal Code\nSunrise Care,Parramatta,2150\nBay Health,Manly,2095\n", string(data))
}

func TestRatingsCommand(t *testing.T) {
	dir := t.TempDir()
	list := writeServiceList(t, dir)

	f := excelize.NewFile()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"Service Name", "Provider Name", "Service Suburb", "Overall Star Rating"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{"SUNRISE LODGE", "SUNRISE CARE", "PARRAMATTA", "4"}))
	ratingsPath := filepath.Join(dir, "ratings.xlsx")
	require.NoError(t, f.SaveAs(ratingsPath))
	f.Close() // nolint:errcheck

	output := filepath.Join(dir, "merged.csv")
	out, err := execute(t, "ratings", "--data-dir", dir, "--service-list", list, "--ratings", ratingsPath, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+output)
	assert.Contains(t, out, "Total: 2, succeeded: 1, failed: 1")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Service Name,Provider Name,Care Type,Suburb,Postal Code,Overall Star Rating"))
	assert.Equal(t, "Sunrise Lodge,Sunrise Care,Residential Care,Parramatta,2150,4,,,,", lines[1])
	assert.Equal(t, "Bay House,Bay Health,Residential Care,Manly,2095,,,,,", lines[2])
}

type stubSearcher struct {
	results map[string][]string
}

func (s *stubSearcher) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	var out []search.Result
	for _, u := range s.results[query] {
		out = append(out, search.Result{URL: u})
	}
	return out, nil
}

func TestPricingCommand(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch r.URL.Path {
		case "/fees":
			w.Write([]byte(`<html><body><h1>Fees and charges</h1></body></html>`)) // nolint:errcheck
		default:
			w.Write([]byte(`<html><body><h1>Welcome</h1></body></html>`)) // nolint:errcheck
		}
	}))
	defer site.Close()

	stub := &stubSearcher{results: map[string][]string{
		"Sunrise Care home care pricing OR cost OR rates": {site.URL + "/", site.URL + "/fees"},
		"Bay Health home care pricing OR cost OR rates":   {site.URL + "/"},
	}}
	old := newSearcher
	newSearcher = func(a *app) (search.Searcher, error) { return stub, nil }
	t.Cleanup(func() { newSearcher = old })

	dir := t.TempDir()
	out, err := execute(t, "pricing", "--data-dir", dir,
		"--provider", "Sunrise Care", "--provider", "Bay Health",
		"--format", "json", "--sort", "provider")
	require.NoError(t, err)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, result.Summary)
	require.Len(t, result.Pricing, 2)

	// sorted by provider for display
	assert.Equal(t, "Bay Health", result.Pricing[0].Provider)
	assert.Equal(t, "not found", result.Pricing[0].Strategy)
	assert.Len(t, result.Pricing[0].Tried, 4)

	assert.Equal(t, "Sunrise Care", result.Pricing[1].Provider)
	assert.Equal(t, site.URL+"/fees", result.Pricing[1].URL)
	assert.Equal(t, "broad query", result.Pricing[1].Strategy)
	assert.Empty(t, result.Pricing[1].Tried)

	// result log keeps input order with the header written once
	data, err := os.ReadFile(filepath.Join(dir, "results.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "provider,url,strategy,query,tried,downloaded_path", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Sunrise Care,"))
	assert.True(t, strings.HasPrefix(lines[2], "Bay Health,,not found,,"))

	runs, err := filepath.Glob(filepath.Join(dir, "runs", "pricing_*.json"))
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestPricingCommand_ProviderList(t *testing.T) {
	old := newSearcher
	stub := &stubSearcher{}
	newSearcher = func(a *app) (search.Searcher, error) { return stub, nil }
	t.Cleanup(func() { newSearcher = old })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, UniqueProvidersFile), []byte("Provider Name\nA\nB\nC\n"), 0644))

	out, err := execute(t, "pricing", "--data-dir", dir, "--limit", "2", "--dry-run", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "command: pricing")
	assert.Contains(t, out, "total: 2")

	_, err = os.Stat(filepath.Join(dir, "results.csv"))
	assert.True(t, os.IsNotExist(err), "dry run must not write the result log")
}

func TestPricingCommand_ChangesSincePreviousRun(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><h1>Fees and charges</h1></body></html>`)) // nolint:errcheck
	}))
	defer site.Close()

	stub := &stubSearcher{results: map[string][]string{}}
	old := newSearcher
	newSearcher = func(a *app) (search.Searcher, error) { return stub, nil }
	t.Cleanup(func() { newSearcher = old })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "names.csv"), []byte("Provider Name\nSunrise Care\n"), 0644))

	out, err := execute(t, "pricing", "--data-dir", dir, "--providers", "names.csv")
	require.NoError(t, err)
	assert.Contains(t, out, "NOT FOUND: Sunrise Care")
	assert.NotContains(t, out, "Changes since previous run")

	stub.results["Sunrise Care home care pricing OR cost OR rates"] = []string{site.URL + "/fees"}

	out, err = execute(t, "pricing", "--data-dir", dir, "--providers", "names.csv", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "FOUND (broad query): Sunrise Care")
	assert.Contains(t, out, "NEWLY FOUND: Sunrise Care")
	assert.Contains(t, out, "pricing.found_rate: 100.0")

	out, err = execute(t, "pricing", "--data-dir", dir, "--providers", "names.csv", "--format", "json")
	require.NoError(t, err)
	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Changes)
	assert.True(t, result.Changes.Empty())
	assert.NotEmpty(t, result.PreviousRun)
}

func TestComplianceCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/service-and-reports", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("field_acqsc_report_provider_name") == "Sunrise Care" {
			w.Write([]byte(`<a href="/services/sunrise">Sunrise</a>`)) // nolint:errcheck
			return
		}
		w.Write([]byte(`<p>No results</p>`)) // nolint:errcheck
	})
	mux.HandleFunc("/services/sunrise", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<a href="/files/sunrise.docx">Report</a>`)) // nolint:errcheck
	})
	mux.HandleFunc("/files/sunrise.docx", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("PK")) // nolint:errcheck
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	t.Setenv("AGEDCARE_COMPLIANCE_BASE_URL", server.URL)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nsw.csv"),
		[]byte("Provider Name,Suburb,Postal Code\nSunrise Care,Parramatta,2150\nBay Health,Manly,2095\n"), 0644))

	// relative list names resolve inside the data dir
	out, err := execute(t, "compliance", "--data-dir", dir, "--locations", "nsw.csv", "--format", "json")
	require.NoError(t, err)

	var result OutputResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, Summary{Total: 2, Succeeded: 1, Failed: 1}, result.Summary)
	require.Len(t, result.Compliance, 2)

	assert.Equal(t, server.URL+"/files/sunrise.docx", result.Compliance[0].ReportURL)
	assert.Equal(t, filepath.Join(dir, "downloads", "compliance_reports", "Sunrise_Care_Parramatta_2150.docx"), result.Compliance[0].LocalPath)
	assert.Equal(t, "no service page found", result.Compliance[1].Error)

	data, err := os.ReadFile(filepath.Join(dir, "results.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "provider,suburb,postcode,report_url,local_path\n")
	assert.Contains(t, string(data), "Sunrise Care,Parramatta,2150,")
	assert.NotContains(t, string(data), "Bay Health")
}

func TestInvalidFlags(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "providers", "--data-dir", dir, "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")

	_, err = execute(t, "pricing", "--data-dir", dir, "--sort", "date")
	assert.ErrorContains(t, err, "invalid sort order")

	_, err = execute(t, "pricing", "--data-dir", dir, "--provider", "Acme", "--log-level", "loud")
	assert.ErrorContains(t, err, "unknown log level")
}
