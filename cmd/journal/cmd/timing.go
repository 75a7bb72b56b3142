package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/equity"
)

var timingCmd = &cobra.Command{
	Use:   "timing",
	Short: "Count equity curve shapes per entry day",
	Long: `Classify each trade's equity curve as straight_up, straight_down,
finish_up or finish_down and count the shapes per entry day. Many
finish_up trades suggest entries that are early.`,
	Args: cobra.NoArgs,
	RunE: runTiming,
}

var timingFilter filterFlags

func init() {
	rootCmd.AddCommand(timingCmd)
	timingFilter.register(timingCmd)
}

func runTiming(cmd *cobra.Command, args []string) error {
	f, err := timingFilter.filter()
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

	days, err := svc.Timing(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s", "Date")
	for _, s := range equity.Shapes {
		fmt.Fprintf(out, " %13s", s)
	}
	fmt.Fprintln(out)

	totals := make(map[equity.Shape]int)
	for _, d := range days {
		fmt.Fprintf(out, "%-10s", d.Date.Format("2006-01-02"))
		for _, s := range equity.Shapes {
			fmt.Fprintf(out, " %13d", d.Counts[s])
			totals[s] += d.Counts[s]
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "%-10s", "Total")
	for _, s := range equity.Shapes {
		fmt.Fprintf(out, " %13d", totals[s])
	}
	fmt.Fprintln(out)
	return nil
}
