package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/market"
)

const importBatch = 500

var candlesCmd = &cobra.Command{
	Use:   "candles",
	Short: "Manage price history",
}

var candlesImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import semicolon-separated candles into the journal",
	Long: `Import candles from a semicolon-separated file with the columns
time;open;high;low;close;volume[;session]. Existing bars are replaced.

Example:
  journal candles import aapl-2025-03.csv --symbol AAPL --timeframe 1m`,
	Args: cobra.ExactArgs(1),
	RunE: runCandlesImport,
}

var (
	candlesSymbol    string
	candlesTimeframe string
	candlesQuiet     bool
)

func init() {
	rootCmd.AddCommand(candlesCmd)
	candlesCmd.AddCommand(candlesImportCmd)

	candlesImportCmd.Flags().StringVarP(&candlesSymbol, "symbol", "s", "", "ticker symbol (required)")
	candlesImportCmd.Flags().StringVar(&candlesTimeframe, "timeframe", string(market.M1), "bar timeframe")
	candlesImportCmd.Flags().BoolVarP(&candlesQuiet, "quiet", "q", false, "hide the progress bar")
	_ = candlesImportCmd.MarkFlagRequired("symbol")
}

func runCandlesImport(cmd *cobra.Command, args []string) error {
	tf := market.Timeframe(candlesTimeframe)
	if _, err := tf.Duration(); err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer file.Close()

	candles, err := journal.ReadCandlesCSV(file, candlesSymbol, tf)
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	var w io.Writer = cmd.ErrOrStderr()
	if candlesQuiet {
		w = io.Discard
	}
	bar := initProgressBar(len(candles), w)

	total := 0
	for start := 0; start < len(candles); start += importBatch {
		end := min(start+importBatch, len(candles))
		n, err := j.SaveCandles(cmd.Context(), candles[start:end])
		if err != nil {
			return fmt.Errorf("save candles: %w", err)
		}
		total += n
		_ = bar.Add(n)
	}
	_ = bar.Finish()

	logger.Info("candles imported",
		zap.String("symbol", candlesSymbol),
		zap.String("timeframe", string(tf)),
		zap.Int("count", total),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s candles for %s\n", total, tf, candlesSymbol)
	return nil
}

func initProgressBar(size int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Importing candles..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
