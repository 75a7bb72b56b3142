package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/commission"
)

var commissionCmd = &cobra.Command{
	Use:   "commission",
	Short: "Estimate the commission of an order",
	Long: `Estimate the commission for an order under the configured plan, or the
plan given with --plan.

Examples:
  journal commission --qty 100 --price 25
  journal commission --qty 500 --price 12.5 --plan tiered --monthly-volume 250000`,
	Args: cobra.NoArgs,
	RunE: runCommission,
}

var (
	commissionQty     float64
	commissionPrice   float64
	commissionPlan    string
	commissionMonthly float64
)

func init() {
	rootCmd.AddCommand(commissionCmd)
	commissionCmd.Flags().Float64Var(&commissionQty, "qty", 0, "shares (required)")
	commissionCmd.Flags().Float64Var(&commissionPrice, "price", 0, "price per share (required)")
	commissionCmd.Flags().StringVar(&commissionPlan, "plan", "", "none, fixed or tiered (default: from config)")
	commissionCmd.Flags().Float64Var(&commissionMonthly, "monthly-volume", 0, "monthly share volume for the tiered plan")
	_ = commissionCmd.MarkFlagRequired("qty")
	_ = commissionCmd.MarkFlagRequired("price")
}

func runCommission(cmd *cobra.Command, args []string) error {
	m := cfg.Commission
	if commissionPlan != "" {
		p, err := commission.ParsePlan(commissionPlan)
		if err != nil {
			return err
		}
		m.Plan = p
	}
	if commissionMonthly > 0 {
		m.MonthlyVolume = commissionMonthly
	}

	c, err := m.Commission(commissionQty, commissionPrice)
	if err != nil {
		return err
	}
	plan := m.Plan
	if plan == "" {
		plan = commission.None
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %.4f\n", plan, c)
	return nil
}
