package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

type result struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
}

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dataDir := filepath.Join(tmpDir, "nested", "data")

	s, err := New(dataDir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("Expected data directory to exist: %v", err)
	}

	if got := s.DownloadDir(KindPricing); got != filepath.Join(dataDir, "downloads", "pricing") {
		t.Errorf("DownloadDir(pricing) = %q", got)
	}
	if got := s.DownloadDir(KindCompliance); got != filepath.Join(dataDir, "downloads", "compliance_reports") {
		t.Errorf("DownloadDir(compliance) = %q", got)
	}
	if got := s.Path("results.csv"); got != filepath.Join(dataDir, "results.csv") {
		t.Errorf("Path(results.csv) = %q", got)
	}
	if got := s.Path("/tmp/x.csv"); got != "/tmp/x.csv" {
		t.Errorf("Path should keep absolute names, got %q", got)
	}
}

func TestNew_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s, err := New("~/agedcare")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	if s.Dir() != filepath.Join(home, "agedcare") {
		t.Errorf("Dir() = %q, want %q", s.Dir(), filepath.Join(home, "agedcare"))
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	run := &Run{
		Command:   "pricing",
		StartedAt: time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Metrics:   logger.Snapshot{Counters: map[string]int64{"pricing.found": 1}},
		Results:   []result{{Provider: "Acme", URL: "https://acme.example/fees.pdf"}},
	}

	path, err := s.SaveRun(run)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), "pricing_") {
		t.Errorf("unexpected run file name %q", path)
	}
	if run.CompletedAt == "" {
		t.Error("expected CompletedAt to be set")
	}

	var results []result
	loaded, err := s.LoadRun(path, &results)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.Command != "pricing" || loaded.StartedAt != run.StartedAt {
		t.Errorf("loaded run = %+v", loaded)
	}
	if loaded.Metrics.Counters["pricing.found"] != 1 {
		t.Errorf("expected metrics to round trip, got %+v", loaded.Metrics)
	}
	if len(results) != 1 || results[0].Provider != "Acme" {
		t.Errorf("results = %+v", results)
	}
}

func TestLatestRun(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	_, err = s.LatestRun("ratings")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}

	runs := filepath.Join(s.Dir(), "runs")
	if err := os.MkdirAll(runs, 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{
		"ratings_20250701T090000.000Z.json",
		"ratings_20250702T090000.000Z.json",
		"pricing_20250703T090000.000Z.json",
	} {
		if err := os.WriteFile(filepath.Join(runs, name), []byte(`{"command":"x"}`), 0644); err != nil {
			t.Fatal(err)
		}
	}

	latest, err := s.LatestRun("ratings")
	if err != nil {
		t.Fatalf("LatestRun failed: %v", err)
	}
	if filepath.Base(latest) != "ratings_20250702T090000.000Z.json" {
		t.Errorf("LatestRun = %q", latest)
	}
}

func TestLoadRun_Invalid(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	path := filepath.Join(s.Dir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadRun(path, nil); err == nil {
		t.Error("expected error for malformed run")
	}
	if _, err := s.LoadRun(filepath.Join(s.Dir(), "missing.json"), nil); err == nil {
		t.Error("expected error for missing run")
	}
}
