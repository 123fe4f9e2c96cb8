package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agedcare-docs/internal/config"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/report"
	"github.com/pfrederiksen/agedcare-docs/internal/storage"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version is reported by --version; set at build time.
var Version = "dev"

var (
	flagConfig   string
	flagDataDir  string
	flagFormat   string
	flagLogLevel string
	flagVerbose  bool
	flagDryRun   bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agedcare-docs",
		Short: "Find and cross-reference published aged-care provider documents",
		Long: `A CLI tool that locates pricing documents, compliance reports and star ratings
for aged-care providers and merges them with the government service list.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default ./agedcare-docs.yaml if present)")
	pf.StringVar(&flagDataDir, "data-dir", "", "Data directory for downloads, logs and runs (overrides config)")
	pf.StringVar(&flagFormat, "format", "text", "Output format: text, json or yaml")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging and print run metrics")
	pf.BoolVar(&flagDryRun, "dry-run", false, "Print result rows to stderr instead of appending to the result log")

	cmd.AddCommand(newPricingCmd())
	cmd.AddCommand(newRatingsCmd())
	cmd.AddCommand(newProvidersCmd())
	cmd.AddCommand(newComplianceCmd())

	return cmd
}

// app is the state shared by every subcommand run.
type app struct {
	command string
	cfg     *config.Config
	log     *logger.Logger
	store   *storage.Storage
	format  OutputFormat
	started time.Time
	stdout  io.Writer
	stderr  io.Writer
}

// setup loads configuration, applies flag overrides and prepares logging and storage.
func setup(cmd *cobra.Command) (*app, error) {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON && format != FormatYAML {
		return nil, fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'yaml')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	levelName := cfg.LogLevel
	if flagLogLevel != "" {
		levelName = flagLogLevel
	}
	if flagVerbose {
		levelName = string(logger.LevelDebug)
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}

	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	log.Debug("configuration loaded", logger.Fields{
		"command":  cmd.Name(),
		"data_dir": store.Dir(),
		"search":   cfg.Search.Provider,
	})

	return &app{
		command: cmd.Name(),
		cfg:     cfg,
		log:     log.With(logger.Fields{"command": cmd.Name()}),
		store:   store,
		format:  format,
		started: time.Now().UTC(),
		stdout:  cmd.OutOrStdout(),
		stderr:  cmd.ErrOrStderr(),
	}, nil
}

// reporter returns the result-log sink for this run.
func (a *app) reporter() report.Reporter {
	if flagDryRun {
		return report.NewDryRunReporter(a.stderr)
	}
	return report.NewCSVReporter(a.store.Path(a.cfg.Report.Log))
}

// finish saves the run snapshot and writes the command output.
func (a *app) finish(result *OutputResult, results any) error {
	snapshot := logger.GetMetricsSnapshot()

	run := &storage.Run{
		Command:   a.command,
		StartedAt: a.started.Format(time.RFC3339),
		Metrics:   snapshot,
		Results:   results,
	}
	path, err := a.store.SaveRun(run)
	if err != nil {
		a.log.Warn("saving run failed", nil, err)
	} else {
		result.RunFile = path
	}

	result.Command = a.command
	result.CheckedAt = time.Now().UTC()
	if flagVerbose {
		result.Metrics = &snapshot
	}

	if err := WriteOutput(a.stdout, result, a.format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}
