package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/journal"
)

var equityCmd = &cobra.Command{
	Use:   "equity <trade-id>",
	Short: "Replay a trade minute by minute against its candles",
	Long: `Build the equity curve of one trade: one point per minute from a minute
before the first fill to a minute after the last, marked to the latest
candle close.

Examples:
  journal equity 01JP3Z8M4W9QX5K2N7R6T1V0AB
  journal equity 01JP3Z8M4W9QX5K2N7R6T1V0AB --csv curve.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runEquity,
}

var equityCSV string

func init() {
	rootCmd.AddCommand(equityCmd)
	equityCmd.Flags().StringVar(&equityCSV, "csv", "", "write the curve to CSV file")
}

func runEquity(cmd *cobra.Command, args []string) error {
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

	points, err := svc.EquityCurve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if equityCSV != "" {
		file, err := os.Create(equityCSV)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := journal.WriteEquityCSV(file, points); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d points to %s\n", len(points), equityCSV)
		return nil
	}

	fmt.Fprintf(out, "%-20s %10s %10s %10s %10s %10s\n", "Time", "Price", "Position", "Realized", "Unrealized", "Total")
	for _, p := range points {
		price := "-"
		if p.CurrentPrice != nil {
			price = fmt.Sprintf("%.4f", *p.CurrentPrice)
		}
		fmt.Fprintf(out, "%-20s %10s %10g %10.2f %10.2f %10.2f\n",
			p.Time.Format("2006-01-02 15:04"), price, p.PositionSize, p.RealizedPnL, p.UnrealizedPnL, p.TotalPnL)
	}
	return nil
}
