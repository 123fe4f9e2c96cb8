package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agedcare-docs/internal/dataset"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/ratings"
)

// RatingsOutputFile is the default merged ratings table.
const RatingsOutputFile = "residential_services_with_star_ratings.csv"

var (
	flagServiceList  string
	flagRatingsFile  string
	flagRatingsSheet int
	flagThreshold    float64
	flagRatingsOut   string
)

func newRatingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratings",
		Short: "Merge star ratings onto residential services",
		Long: `Matches each residential service in the service list to the star-ratings extract by
fuzzy comparison of "service - provider - suburb" keys and writes the service rows with the
rating columns appended. Unmatched services keep blank ratings.`,
		RunE: runRatings,
	}

	cmd.Flags().StringVar(&flagServiceList, "service-list", "", "Service list workbook (overrides config)")
	cmd.Flags().StringVar(&flagRatingsFile, "ratings", "", "Star-ratings workbook (overrides config)")
	cmd.Flags().IntVar(&flagRatingsSheet, "ratings-sheet", -1, "Zero-based sheet index of the ratings data (default from config)")
	cmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "Match threshold 0-100 (default from config)")
	cmd.Flags().StringVar(&flagRatingsOut, "output", "", "Output .csv or .xlsx (default <data-dir>/"+RatingsOutputFile+")")

	return cmd
}

func runRatings(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	servicePath := stringOr(flagServiceList, a.cfg.Dataset.ServiceList)
	ratingsPath := stringOr(flagRatingsFile, a.cfg.Dataset.Ratings)
	sheet := a.cfg.Dataset.RatingsSheet
	if flagRatingsSheet >= 0 {
		sheet = flagRatingsSheet
	}
	threshold := a.cfg.Matching.Threshold
	if flagThreshold > 0 {
		threshold = flagThreshold
	}
	if threshold > 100 {
		return fmt.Errorf("invalid threshold: %v (must be at most 100)", threshold)
	}
	output := flagRatingsOut
	if output == "" {
		output = a.store.Path(RatingsOutputFile)
	}

	list, err := dataset.LoadServiceList(servicePath)
	if err != nil {
		return fmt.Errorf("loading service list: %w", err)
	}
	rated, err := dataset.LoadRatings(ratingsPath, sheet)
	if err != nil {
		return fmt.Errorf("loading ratings: %w", err)
	}
	a.log.Info("datasets loaded", logger.Fields{"services": len(list.Services), "ratings": len(rated)})

	merged := ratings.Merge(list, rated, threshold, a.log)

	if err := dataset.WriteTable(output, merged.Header, merged.Rows); err != nil {
		return fmt.Errorf("writing merged ratings: %w", err)
	}

	result := &OutputResult{
		Summary: Summary{
			Total:     len(merged.Rows),
			Succeeded: merged.Matched,
			Failed:    len(merged.Rows) - merged.Matched,
		},
		Files: []string{output},
	}
	return a.finish(result, result.Summary)
}

func stringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
