package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/trade"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Create, inspect and remove trades",
	Long: `Manage trade records in the SQLite journal.

Subcommands:
  new     - Open a new (empty) trade
  show    - Print a trade and its fills as Org-mode
  list    - List trades matching a filter
  delete  - Remove a trade and its fills

Examples:
  journal trade new --symbol AAPL --side long --strategy orb
  journal trade show 01JP3Z8M4W9QX5K2N7R6T1V0AB
  journal trade list --symbol AAPL --from 2025-03-01 --csv trades.csv`,
}

var tradeNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Open a new trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeNew,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Print a trade as Org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades in entry order",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade and its fills",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDelete,
}

var (
	tradeNewID       string
	tradeNewSymbol   string
	tradeNewSide     string
	tradeNewStrategy string
	tradeNewStop     float64
	tradeNewTarget   float64

	tradeListFilter filterFlags
	tradeListCSV    string
	tradeListOrg    bool
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeNewCmd, tradeShowCmd, tradeListCmd, tradeDeleteCmd)

	tradeNewCmd.Flags().StringVar(&tradeNewID, "id", "", "trade id (default: new ULID)")
	tradeNewCmd.Flags().StringVarP(&tradeNewSymbol, "symbol", "s", "", "ticker symbol (required)")
	tradeNewCmd.Flags().StringVar(&tradeNewSide, "side", "long", "LONG or SHORT")
	tradeNewCmd.Flags().StringVar(&tradeNewStrategy, "strategy", "", "strategy tag")
	tradeNewCmd.Flags().Float64Var(&tradeNewStop, "stop", 0, "stop loss price")
	tradeNewCmd.Flags().Float64Var(&tradeNewTarget, "target", 0, "take profit price")
	_ = tradeNewCmd.MarkFlagRequired("symbol")

	tradeListFilter.register(tradeListCmd)
	tradeListCmd.Flags().StringVar(&tradeListCSV, "csv", "", "write trades to CSV file")
	tradeListCmd.Flags().BoolVar(&tradeListOrg, "org", false, "print trades as Org-mode")
}

func runTradeNew(cmd *cobra.Command, args []string) error {
	side, err := trade.ParseSide(tradeNewSide)
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t := trade.New(tradeNewID, tradeNewSymbol, side)
	t.StrategyID = tradeNewStrategy
	t.StopLoss = tradeNewStop
	t.TakeProfit = tradeNewTarget
	if err := j.CreateTrade(cmd.Context(), t); err != nil {
		return err
	}

	logger.Info("trade created", zap.String("trade_id", t.ID), zap.String("symbol", t.Symbol))
	fmt.Fprintln(cmd.OutOrStdout(), t.ID)
	return nil
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	t, err := j.GetTrade(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get trade: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
	return nil
}

func runTradeList(cmd *cobra.Command, args []string) error {
	f, err := tradeListFilter.filter()
	if err != nil {
		return err
	}

	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTrades(cmd.Context(), f)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case tradeListCSV != "":
		file, err := os.Create(tradeListCSV)
		if err != nil {
			return err
		}
		defer file.Close()
		if err := journal.WriteTradesCSV(file, trades); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d trades to %s\n", len(trades), tradeListCSV)
	case tradeListOrg:
		fmt.Fprintln(out, journal.FormatTradesOrg(trades))
	default:
		fmt.Fprintf(out, "%-26s %-6s %-5s %-10s %10s %10s %8s %10s\n",
			"ID", "Symbol", "Side", "Entry", "EntryPx", "ExitPx", "Qty", "P/L")
		for _, t := range trades {
			fmt.Fprintf(out, "%-26s %-6s %-5s %-10s %10.4f %10.4f %8g %10.2f\n",
				t.ID, t.Symbol, t.Side, trade.FormatDate(t.EntryDate),
				t.EntryPrice, t.ExitPrice, t.EntryQuantity, t.RealizedPnL)
		}
	}
	return nil
}

func runTradeDelete(cmd *cobra.Command, args []string) error {
	j, err := openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	if err := j.DeleteTrade(cmd.Context(), args[0]); err != nil {
		return err
	}
	logger.Info("trade deleted", zap.String("trade_id", args[0]))
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
