package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agedcare-docs/internal/dataset"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
)

// LocationsFile is the provider-location list written by the providers command.
const LocationsFile = "filtered_providers_for_compliance.csv"

var (
	flagProvidersServiceList string
	flagCareTypes            []string
	flagOutputDir            string
)

func newProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Write provider and provider-location lists from the service list",
		Long: `Filters the service list by care type and writes two CSV files: the unique provider
names (input to the pricing command) and the unique provider, suburb and postcode
locations (input to the compliance command).`,
		RunE: runProviders,
	}

	cmd.Flags().StringVar(&flagProvidersServiceList, "service-list", "", "Service list workbook (overrides config)")
	cmd.Flags().StringSliceVar(&flagCareTypes, "care-types", nil, "Care types to keep, comma separated (default from config)")
	cmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for the CSV files (default <data-dir>)")

	return cmd
}

func runProviders(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	careTypes := a.cfg.Dataset.CareTypes
	if len(flagCareTypes) > 0 {
		careTypes = flagCareTypes
	}
	outDir := stringOr(flagOutputDir, a.store.Dir())

	list, err := dataset.LoadServiceList(stringOr(flagProvidersServiceList, a.cfg.Dataset.ServiceList))
	if err != nil {
		return fmt.Errorf("loading service list: %w", err)
	}

	kept := dataset.FilterCareTypes(list.Services, careTypes)
	names := dataset.UniqueProviders(kept)
	locs := dataset.UniqueLocations(kept)
	a.log.Info("services filtered", logger.Fields{
		"services":   len(list.Services),
		"kept":       len(kept),
		"care_types": strings.Join(careTypes, ","),
		"providers":  len(names),
		"locations":  len(locs),
	})

	nameRows := make([][]string, len(names))
	for i, n := range names {
		nameRows[i] = []string{n}
	}

	providersPath := filepath.Join(outDir, UniqueProvidersFile)
	if err := dataset.WriteCSV(providersPath, []string{dataset.ColProviderName}, nameRows); err != nil {
		return fmt.Errorf("writing provider list: %w", err)
	}
	locationsPath := filepath.Join(outDir, LocationsFile)
	if err := dataset.WriteCSV(locationsPath, dataset.LocationHeader, dataset.LocationRows(locs)); err != nil {
		return fmt.Errorf("writing location list: %w", err)
	}

	result := &OutputResult{
		Summary: Summary{Total: len(list.Services), Succeeded: len(kept), Failed: len(list.Services) - len(kept)},
		Files:   []string{providersPath, locationsPath},
	}
	return a.finish(result, map[string]int{"providers": len(names), "locations": len(locs)})
}
