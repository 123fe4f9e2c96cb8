package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

// Download kinds.
const (
	KindPricing    = "pricing"
	KindCompliance = "compliance_reports"
)

const (
	downloadsDir = "downloads"
	runsDir      = "runs"
	runTimestamp = "20060102T150405.000Z"
)

// Storage handles the on-disk layout of the data directory
type Storage struct {
	dataDir string
}

// Run is a saved command run.
type Run struct {
	Command     string          `json:"command"`
	StartedAt   string          `json:"started_at"`
	CompletedAt string          `json:"completed_at"`
	Metrics     logger.Snapshot `json:"metrics"`
	Results     any             `json:"results"`
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Dir returns the data directory.
func (s *Storage) Dir() string {
	return s.dataDir
}

// Path returns name inside the data directory. Absolute names are returned unchanged.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dataDir, name)
}

// DownloadDir returns the directory for downloaded documents of kind.
func (s *Storage) DownloadDir(kind string) string {
	return filepath.Join(s.dataDir, downloadsDir, kind)
}

// SaveRun writes run to runs/ and returns its path. CompletedAt is set if empty.
func (s *Storage) SaveRun(run *Run) (string, error) {
	now := time.Now().UTC()
	if run.CompletedAt == "" {
		run.CompletedAt = now.Format(time.RFC3339)
	}

	dir := filepath.Join(s.dataDir, runsDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating runs directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding run: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", run.Command, now.Format(runTimestamp)))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing run: %w", err)
	}

	return path, nil
}

// LoadRun reads a saved run, decoding its results into results (a pointer) when non-nil.
func (s *Storage) LoadRun(path string, results any) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run: %w", err)
	}

	var raw struct {
		Run
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing run: %w", err)
	}

	run := raw.Run
	if results != nil && len(raw.Results) > 0 {
		if err := json.Unmarshal(raw.Results, results); err != nil {
			return nil, fmt.Errorf("parsing run results: %w", err)
		}
		run.Results = results
	}
	return &run, nil
}

// LatestRun returns the path of the newest saved run of command. It returns an error
// wrapping os.ErrNotExist when there is none.
func (s *Storage) LatestRun(command string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, runsDir, command+"_*.json"))
	if err != nil {
		return "", fmt.Errorf("listing runs: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s runs: %w", command, os.ErrNotExist)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
