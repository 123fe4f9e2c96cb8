package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/agedcare-docs/internal/compliance"
	"github.com/pfrederiksen/agedcare-docs/internal/dataset"
	"github.com/pfrederiksen/agedcare-docs/internal/fetch"
	"github.com/pfrederiksen/agedcare-docs/internal/logger"
	"github.com/pfrederiksen/agedcare-docs/internal/provider"
	"github.com/pfrederiksen/agedcare-docs/internal/report"
	"github.com/pfrederiksen/agedcare-docs/internal/storage"
)

var (
	flagLocations          string
	flagComplianceLimit    int
	flagComplianceProvider string
	flagComplianceSuburb   string
	flagCompliancePostcode string
)

func newComplianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compliance",
		Short: "Download compliance reports for provider locations",
		Long: `Looks up each provider location on the regulator's service and reports search,
opens the first matching service page and downloads its compliance report (.docx).`,
		RunE: runCompliance,
	}

	cmd.Flags().StringVar(&flagLocations, "locations", "", "Location CSV with Provider Name, Suburb and Postal Code, relative to the data dir (default "+LocationsFile+")")
	cmd.Flags().IntVar(&flagComplianceLimit, "limit", -1, "Maximum locations to process, 0 for all (default from config)")
	cmd.Flags().StringVar(&flagComplianceProvider, "provider", "", "Single provider name (use with --suburb and --postcode)")
	cmd.Flags().StringVar(&flagComplianceSuburb, "suburb", "", "Suburb for --provider")
	cmd.Flags().StringVar(&flagCompliancePostcode, "postcode", "", "Postcode for --provider")

	return cmd
}

func runCompliance(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	locs, err := complianceLocations(a)
	if err != nil {
		return err
	}

	client, err := compliance.NewClient(
		a.cfg.Compliance.BaseURL,
		fetch.NewDownloader(a.store.DownloadDir(storage.KindCompliance), a.cfg.Compliance.Timeout),
		a.cfg.Compliance.Timeout,
		a.log,
	)
	if err != nil {
		return fmt.Errorf("initializing compliance client: %w", err)
	}

	rep := a.reporter()
	ctx := cmd.Context()
	result := &OutputResult{}

	for i, loc := range locs {
		if ctx.Err() != nil {
			a.log.Error("run interrupted", logger.Fields{"processed": i, "total": len(locs)}, ctx.Err())
			break
		}
		a.log.Info("processing location", logger.Fields{
			"index": i + 1, "total": len(locs),
			"provider": loc.Provider, "suburb": loc.Suburb, "postcode": loc.Postcode,
		})

		res, err := client.Download(ctx, loc)
		row := ComplianceRow{Result: res}
		result.Summary.Total++
		if err != nil {
			row.Error = err.Error()
			result.Summary.Failed++
			if errors.Is(err, compliance.ErrNoServicePage) || errors.Is(err, compliance.ErrNoReport) {
				a.log.Info("no compliance report", logger.Fields{"provider": loc.Provider, "reason": err.Error()})
			} else {
				a.log.Warn("compliance download failed", logger.Fields{"provider": loc.Provider}, err)
			}
		} else {
			result.Summary.Succeeded++
			if err := rep.Report(report.Rows([]compliance.Result{res})); err != nil {
				a.log.Warn("result log failed", logger.Fields{"provider": loc.Provider}, err)
			}
		}
		result.Compliance = append(result.Compliance, row)
	}

	return a.finish(result, result.Compliance)
}

// complianceLocations returns the single location given by flags, or the head of the
// location list file.
func complianceLocations(a *app) ([]provider.Location, error) {
	if p := strings.TrimSpace(flagComplianceProvider); p != "" {
		return []provider.Location{{
			Provider: p,
			Suburb:   strings.TrimSpace(flagComplianceSuburb),
			Postcode: strings.TrimSpace(flagCompliancePostcode),
		}}, nil
	}

	locs, err := dataset.ReadProviderLocations(a.store.Path(stringOr(flagLocations, LocationsFile)))
	if err != nil {
		return nil, fmt.Errorf("reading location list: %w", err)
	}

	limit := a.cfg.BatchLimit
	if flagComplianceLimit >= 0 {
		limit = flagComplianceLimit
	}
	if limit > 0 && len(locs) > limit {
		locs = locs[:limit]
	}
	if len(locs) == 0 {
		return nil, fmt.Errorf("no provider locations to process")
	}
	return locs, nil
}
