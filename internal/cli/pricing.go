package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agedcare-docs/internal/dataset"
	"github.com/pfrederiksen/agedcare-docs/internal/fetch"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/pricing"
	"github.com/pfrederiksen/agedcare-docs/internal/report"
	"github.com/pfrederiksen/agedcare-docs/internal/search"
	"github.com/pfrederiksen/agedcare-docs/internal/storage"
)

// UniqueProvidersFile is the provider list written by the providers command.
const UniqueProvidersFile = "unique_providers.csv"

var (
	flagPricingProviders []string
	flagPricingList      string
	flagPricingLimit     int
	flagSearchProvider   string
	flagSort             string
)

// newSearcher builds a Searcher from configuration. Tests replace it.
var newSearcher = func(a *app) (search.Searcher, error) {
	if err := a.cfg.RequireSearchKey(); err != nil {
		return nil, err
	}
	return search.New(search.Options{
		Provider:      a.cfg.Search.Provider,
		APIKey:        a.cfg.Search.APIKey,
		BaseURL:       a.cfg.Search.BaseURL,
		Timeout:       a.cfg.Search.Timeout,
		RatePerSecond: a.cfg.Search.RatePerSecond,
	})
}

func newPricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Search the web for each provider's pricing page or PDF",
		Long: `Runs the search-and-fetch fallback chain for each provider: a broad query, then one
query per fallback keyword, checking each result page and its outbound links for pricing
content. Pricing PDFs linked from a result page are downloaded.`,
		RunE: runPricing,
	}

	cmd.Flags().StringArrayVar(&flagPricingProviders, "provider", nil, "Provider name to search (repeatable; skips the provider list)")
	cmd.Flags().StringVar(&flagPricingList, "providers", "", "Provider list CSV with a 'Provider Name' column, relative to the data dir (default "+UniqueProvidersFile+")")
	cmd.Flags().IntVar(&flagPricingLimit, "limit", -1, "Maximum providers to process, 0 for all (default from config)")
	cmd.Flags().StringVar(&flagSearchProvider, "search-provider", "", "Search provider: serpapi or brave (overrides config)")
	cmd.Flags().StringVar(&flagSort, "sort", string(SortByInput), "Display order: input, provider or strategy")

	return cmd
}

func runPricing(cmd *cobra.Command, args []string) error {
	order := SortOrder(strings.ToLower(flagSort))
	if !validSortOrder(order) {
		return fmt.Errorf("invalid sort order: %s (must be 'input', 'provider' or 'strategy')", flagSort)
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if flagSearchProvider != "" {
		a.cfg.Search.Provider = flagSearchProvider
	}

	providers, err := pricingProviders(a)
	if err != nil {
		return err
	}

	searcher, err := newSearcher(a)
	if err != nil {
		return fmt.Errorf("initializing search: %w", err)
	}

	fetcher := fetch.New(fetch.Options{
		NavigationTimeout: a.cfg.Fetch.NavigationTimeout,
		GoldenKeywords:    a.cfg.Fetch.GoldenKeywords,
		Downloader:        fetch.NewDownloader(a.store.DownloadDir(storage.KindPricing), a.cfg.Fetch.DownloadTimeout),
		Logger:            a.log,
	})

	finder := pricing.NewFinder(searcher, fetcher, pricing.Config{
		ResultLimit:       a.cfg.Pricing.ResultLimit,
		FallbackKeywords:  a.cfg.Pricing.FallbackKeywords,
		RelevanceKeywords: a.cfg.Pricing.RelevanceKeywords,
	}, a.log)

	previous, previousRun := previousOutcomes(a)

	rep := a.reporter()
	ctx := cmd.Context()

	outcomes := make([]pricing.Outcome, 0, len(providers))
	records := make([]pricing.Record, 0, len(providers))
	result := &OutputResult{}

	for i, name := range providers {
		if ctx.Err() != nil {
			a.log.Error("run interrupted", logger.Fields{"processed": i, "total": len(providers)}, ctx.Err())
			break
		}
		a.log.Info("processing provider", logger.Fields{"index": i + 1, "total": len(providers), "provider": name})

		outcome := finder.Find(ctx, name)
		rec := outcome.Record()
		outcomes = append(outcomes, outcome)
		records = append(records, rec)

		if err := rep.Report(report.Rows([]pricing.Record{rec})); err != nil {
			a.log.Warn("result log failed", logger.Fields{"provider": name}, err)
		}

		result.Summary.Total++
		if outcome.Found {
			result.Summary.Succeeded++
		} else {
			result.Summary.Failed++
		}
	}

	if result.Summary.Total > 0 {
		logger.SetGauge("pricing.found_rate", 100*float64(result.Summary.Succeeded)/float64(result.Summary.Total))
	}

	if previousRun != "" {
		changes := pricing.Compare(previous, outcomes)
		result.PreviousRun = previousRun
		result.Changes = &changes
	}

	result.Pricing = sortRecords(records, order)
	return a.finish(result, outcomes)
}

// previousOutcomes loads the outcomes of the latest saved pricing run. It returns no
// path when there is none or it cannot be read.
func previousOutcomes(a *app) ([]pricing.Outcome, string) {
	path, err := a.store.LatestRun(a.command)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("finding previous run failed", nil, err)
		}
		return nil, ""
	}

	var outcomes []pricing.Outcome
	if _, err := a.store.LoadRun(path, &outcomes); err != nil {
		a.log.Warn("loading previous run failed", logger.Fields{"path": path}, err)
		return nil, ""
	}
	return outcomes, path
}

// pricingProviders returns the providers named on the command line, or the head of the
// provider list file.
func pricingProviders(a *app) ([]string, error) {
	var names []string
	for _, p := range flagPricingProviders {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}

	if len(names) == 0 {
		var err error
		names, err = dataset.ReadProviderNames(a.store.Path(stringOr(flagPricingList, UniqueProvidersFile)))
		if err != nil {
			return nil, fmt.Errorf("reading provider list: %w", err)
		}
	}

	limit := a.cfg.BatchLimit
	if flagPricingLimit >= 0 {
		limit = flagPricingLimit
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no providers to process")
	}
	return names, nil
}
