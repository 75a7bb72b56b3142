package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/trade"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Record executions against a trade",
}

var fillAddCmd = &cobra.Command{
	Use:   "add <trade-id>",
	Short: "Apply a fill to a trade",
	Long: `Apply one execution to a trade and update its aggregate.

A fill in the trade's direction adds to the position; an opposite fill
closes part or all of it. A fill larger than the open position is rejected.
Without --commission the configured commission model is applied.

Example:
  journal fill add 01JP3Z8M4W9QX5K2N7R6T1V0AB --side buy --price 10.25 --qty 100 --date 2025-03-10 --time 14:30`,
	Args: cobra.ExactArgs(1),
	RunE: runFillAdd,
}

var (
	fillDate       string
	fillTime       string
	fillSide       string
	fillPrice      float64
	fillQty        float64
	fillCommission float64
)

func init() {
	rootCmd.AddCommand(fillCmd)
	fillCmd.AddCommand(fillAddCmd)

	fillAddCmd.Flags().StringVar(&fillDate, "date", "", "fill date YYYY-MM-DD (default: today UTC)")
	fillAddCmd.Flags().StringVar(&fillTime, "time", "", "fill time HH:MM[:SS] UTC (default: now)")
	fillAddCmd.Flags().StringVar(&fillSide, "side", "", "LONG/BUY or SHORT/SELL (required)")
	fillAddCmd.Flags().Float64Var(&fillPrice, "price", 0, "execution price (required)")
	fillAddCmd.Flags().Float64Var(&fillQty, "qty", 0, "quantity (required)")
	fillAddCmd.Flags().Float64Var(&fillCommission, "commission", 0, "commission paid (default: from commission model)")
	_ = fillAddCmd.MarkFlagRequired("side")
	_ = fillAddCmd.MarkFlagRequired("price")
	_ = fillAddCmd.MarkFlagRequired("qty")
}

func runFillAdd(cmd *cobra.Command, args []string) error {
	f, err := buildFill(cmd, time.Now().UTC())
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.AddFill(cmd.Context(), args[0], f)
	if err != nil {
		return fmt.Errorf("add fill: %w", err)
	}

	logger.Info("fill added",
		zap.String("trade_id", t.ID),
		zap.String("side", string(f.Side)),
		zap.Float64("price", f.Price),
		zap.Float64("qty", f.Quantity),
		zap.Float64("commission", f.Commission),
	)

	out := cmd.OutOrStdout()
	status := "open"
	if t.Closed() {
		status = "closed"
	}
	fmt.Fprintf(out, "%s %s %s: %s\n", t.ID, t.Symbol, t.Side, status)
	fmt.Fprintf(out, "  Entry: %.4f x %g\n", t.EntryPrice, t.EntryQuantity)
	fmt.Fprintf(out, "  Exit:  %.4f x %g\n", t.ExitPrice, t.ExitQuantity)
	fmt.Fprintf(out, "  Commission: %.2f  Realized P/L: %.2f\n", t.Commission, t.RealizedPnL)
	return nil
}

func buildFill(cmd *cobra.Command, now time.Time) (trade.Fill, error) {
	side, err := trade.ParseSide(fillSide)
	if err != nil {
		return trade.Fill{}, err
	}

	f := trade.Fill{
		Date:     trade.Date(now),
		Time:     trade.TimeOfDay{Hour: now.Hour(), Minute: now.Minute(), Second: now.Second()},
		Side:     side,
		Price:    fillPrice,
		Quantity: fillQty,
	}
	if fillDate != "" {
		if f.Date, err = trade.ParseDate(fillDate); err != nil {
			return trade.Fill{}, err
		}
	}
	if fillTime != "" {
		if f.Time, err = trade.ParseTimeOfDay(fillTime); err != nil {
			return trade.Fill{}, err
		}
	}

	if cmd.Flags().Changed("commission") {
		f.Commission = fillCommission
	} else if f.Commission, err = cfg.Commission.Commission(f.Quantity, f.Price); err != nil {
		return trade.Fill{}, fmt.Errorf("commission: %w", err)
	}
	return f, nil
}
