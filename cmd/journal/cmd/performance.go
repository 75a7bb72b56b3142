package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/metrics"
)

var performanceCmd = &cobra.Command{
	Use:   "performance",
	Short: "Aggregate trade statistics",
	Long: `Compute net and gross performance statistics for the trades matching the
filter, including MAE/MFE from stored candles.

Examples:
  journal performance --symbol AAPL
  journal performance --from 2025-03-01 --to 2025-03-31 --org march.org --title March
  journal performance --json`,
	Args: cobra.NoArgs,
	RunE: runPerformance,
}

var (
	performanceFilter filterFlags
	performanceOrg    string
	performanceTitle  string
	performanceJSON   bool
	performanceTiming bool
)

func init() {
	rootCmd.AddCommand(performanceCmd)
	performanceFilter.register(performanceCmd)
	performanceCmd.Flags().StringVar(&performanceOrg, "org", "", "write an Org-mode report to file")
	performanceCmd.Flags().StringVar(&performanceTitle, "title", "", "Org report title")
	performanceCmd.Flags().BoolVar(&performanceJSON, "json", false, "print the report as JSON")
	performanceCmd.Flags().BoolVar(&performanceTiming, "timing", false, "include entry timing in the Org report")
}

func runPerformance(cmd *cobra.Command, args []string) error {
	f, err := performanceFilter.filter()
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	svc, closeCandles, err := newService(cmd.Context(), j)
	if err != nil {
		return err
	}
	defer closeCandles()

	report, err := svc.Performance(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case performanceJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case performanceOrg != "":
		v := &journal.ReportOrg{
			Title:   performanceTitle,
			Created: time.Now(),
			Filter:  f,
			PValue:  svc.PValueName(),
			Report:  report,
		}
		if performanceTiming {
			if v.Timing, err = svc.Timing(cmd.Context(), f); err != nil {
				return err
			}
		}
		if err := v.WriteFile(performanceOrg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", performanceOrg)
	default:
		metrics.PrintReport(out, report)
	}
	return nil
}
