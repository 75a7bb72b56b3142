package metrics

import (
	"fmt"
	"io"
)

const rule = "--------------------------------------------------"

// PrintReport writes a plain-text rendering of r.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Performance Report")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Trades:        %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Commissions:   %.2f\n", r.TotalCommissions)
	fmt.Fprintf(w, "Fees:          %.2f\n", r.TotalFees)

	printStats(w, "Net", r.Net)
	printStats(w, "Gross", r.Gross)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Hold Time")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Overall:       %s\n", r.AvgHoldTimeOverall)
	fmt.Fprintf(w, "Winners:       %s\n", r.AvgHoldTimeWinners)
	fmt.Fprintf(w, "Losers:        %s\n", r.AvgHoldTimeLosers)
	fmt.Fprintf(w, "Scratches:     %s\n", r.AvgHoldTimeScratches)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Excursion")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Avg MFE:       %.2f\n", r.AvgMFE)
	fmt.Fprintf(w, "Avg MAE:       %.2f\n", r.AvgMAE)

	if len(r.Best) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Best Trades")
		fmt.Fprintln(w, rule)
		for _, t := range r.Best {
			fmt.Fprintf(w, "- %-10s %-26s %10.2f\n", t.Symbol, t.ID, t.ProfitLoss)
		}
	}
	if len(r.Worst) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Worst Trades")
		fmt.Fprintln(w, rule)
		for _, t := range r.Worst {
			fmt.Fprintf(w, "- %-10s %-26s %10.2f\n", t.Symbol, t.ID, t.ProfitLoss)
		}
	}

	fmt.Fprintln(w)
}

func printStats(w io.Writer, title string, s Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total P/L:     %.2f\n", s.TotalPnL)
	fmt.Fprintf(w, "Wins:          %d\n", s.WinningTrades)
	fmt.Fprintf(w, "Losses:        %d\n", s.LosingTrades)
	fmt.Fprintf(w, "Scratches:     %d\n", s.ScratchTrades)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", s.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", s.AvgLoss)
	fmt.Fprintf(w, "Risk/Reward:   %.2f\n", s.RiskReward)

	if s.ProfitFactor >= UnboundedProfitFactor {
		fmt.Fprintln(w, "Profit Factor: unbounded")
	} else if s.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", s.ProfitFactor)
	}
	if s.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f\n", s.MaxDrawdown)
	}

	fmt.Fprintf(w, "Sharpe:        %.2f\n", s.SharpeRatio)
	fmt.Fprintf(w, "SQN:           %.2f\n", s.SQN)
	fmt.Fprintf(w, "K-Ratio:       %.2f\n", s.KRatio)
	fmt.Fprintf(w, "Kelly:         %.2f%%\n", s.KellyPercent)
	fmt.Fprintf(w, "P-Value:       %.4f\n", s.PValue)
	fmt.Fprintf(w, "Streaks:       +%d / -%d\n", s.MaxConsecutiveWins, s.MaxConsecutiveLosses)
	fmt.Fprintf(w, "Daily P/L:     %.2f\n", s.AvgDailyPnL)
	fmt.Fprintf(w, "Daily Volume:  %.2f\n", s.AvgDailyVolume)
}
