package metrics

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// rankedCount is how many trades are listed as best and worst.
const rankedCount = 5

// Ranked is a trade in the best/worst list of a report.
type Ranked struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	ProfitLoss float64 `json:"profit_loss"`
}

// Report is the full performance summary of a set of trades.
type Report struct {
	Net   Stats `json:"net"`
	Gross Stats `json:"gross"`

	TotalTrades      int     `json:"total_trades"`
	TotalCommissions float64 `json:"total_commissions"`
	TotalFees        float64 `json:"total_fees"`

	AvgHoldTimeOverall   string `json:"avg_hold_time_overall"`
	AvgHoldTimeWinners   string `json:"avg_hold_time_winners"`
	AvgHoldTimeLosers    string `json:"avg_hold_time_losers"`
	AvgHoldTimeScratches string `json:"avg_hold_time_scratches"`

	AvgMFE float64 `json:"avg_mfe"`
	AvgMAE float64 `json:"avg_mae"`

	// Balances is cumulative net P&L after each trade, oldest first.
	Balances []float64 `json:"balances"`

	Best  []Ranked `json:"best"`
	Worst []Ranked `json:"worst"`
}

// EmptyReport is the report of no trades.
func EmptyReport() Report {
	return Report{
		Net:                  emptyStats(),
		Gross:                emptyStats(),
		AvgHoldTimeOverall:   "0h",
		AvgHoldTimeWinners:   "0h",
		AvgHoldTimeLosers:    "0h",
		AvgHoldTimeScratches: "0h",
		Balances:             []float64{},
		Best:                 []Ranked{},
		Worst:                []Ranked{},
	}
}

// Aggregator turns trade summaries into reports.
type Aggregator struct {
	pvalue PValueEstimator
}

type Option func(*Aggregator)

// WithPValue replaces the default Approximate estimator.
func WithPValue(e PValueEstimator) Option {
	return func(a *Aggregator) {
		if e != nil {
			a.pvalue = e
		}
	}
}

func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{pvalue: Approximate{}}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Stats summarises trades under one mode. The result does not depend on the
// order of trades.
func (a *Aggregator) Stats(trades []TradeSummary, mode Mode) Stats {
	return computeStats(chronological(trades), mode, a.pvalue)
}

// Aggregate builds the full report. An empty input yields EmptyReport.
func (a *Aggregator) Aggregate(trades []TradeSummary) Report {
	if len(trades) == 0 {
		return EmptyReport()
	}
	ordered := chronological(trades)

	r := Report{
		Net:         computeStats(ordered, Net, a.pvalue),
		Gross:       computeStats(ordered, Gross, a.pvalue),
		TotalTrades: len(ordered),
	}

	var all, winners, losers, scratches, mfe, mae []float64
	var balance float64
	r.Balances = make([]float64, 0, len(ordered))
	for _, t := range ordered {
		r.TotalCommissions += t.Commission
		r.TotalFees += t.Fees
		balance += t.ProfitLoss
		r.Balances = append(r.Balances, balance)

		all = append(all, t.HoldMinutes)
		switch {
		case t.ProfitLoss > 0:
			winners = append(winners, t.HoldMinutes)
		case t.ProfitLoss < 0:
			losers = append(losers, t.HoldMinutes)
		default:
			scratches = append(scratches, t.HoldMinutes)
		}
		mfe = append(mfe, t.MFE)
		mae = append(mae, t.MAE)
	}
	r.TotalCommissions = round(r.TotalCommissions, 2)
	r.TotalFees = round(r.TotalFees, 2)

	r.AvgHoldTimeOverall = avgHoldTime(all)
	r.AvgHoldTimeWinners = avgHoldTime(winners)
	r.AvgHoldTimeLosers = avgHoldTime(losers)
	r.AvgHoldTimeScratches = avgHoldTime(scratches)

	r.AvgMFE = round(mean(mfe), 2)
	r.AvgMAE = round(mean(mae), 2)

	r.Best, r.Worst = rank(ordered)
	return r
}

func avgHoldTime(minutes []float64) string {
	if len(minutes) == 0 {
		return "0h"
	}
	return FormatHoldTime(mean(minutes))
}

// FormatHoldTime renders a duration in minutes as "Nm" below an hour,
// "Nh" or "Nh Mm" below a day, and "Nd" followed by any non-zero hours and
// minutes otherwise. Fractional minutes are truncated and a negative
// duration renders as "0m".
func FormatHoldTime(minutes float64) string {
	if math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return "0h"
	}
	m := max(int64(minutes), 0)
	switch {
	case m < 60:
		return fmt.Sprintf("%dm", m)
	case m < 1440:
		if m%60 == 0 {
			return fmt.Sprintf("%dh", m/60)
		}
		return fmt.Sprintf("%dh %dm", m/60, m%60)
	}

	parts := []string{fmt.Sprintf("%dd", m/1440)}
	rest := m % 1440
	if h := rest / 60; h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if mm := rest % 60; mm > 0 {
		parts = append(parts, fmt.Sprintf("%dm", mm))
	}
	return strings.Join(parts, " ")
}

// rank returns up to rankedCount trades with the highest and lowest net
// P&L, the worst listed lowest first.
func rank(ordered []TradeSummary) (best, worst []Ranked) {
	byPnL := append([]TradeSummary(nil), ordered...)
	sort.SliceStable(byPnL, func(i, j int) bool { return byPnL[i].ProfitLoss > byPnL[j].ProfitLoss })

	n := min(rankedCount, len(byPnL))
	best = make([]Ranked, 0, n)
	worst = make([]Ranked, 0, n)
	for _, t := range byPnL[:n] {
		best = append(best, Ranked{ID: t.ID, Symbol: t.Symbol, ProfitLoss: t.ProfitLoss})
	}
	for i := len(byPnL) - 1; i >= len(byPnL)-n; i-- {
		t := byPnL[i]
		worst = append(worst, Ranked{ID: t.ID, Symbol: t.Symbol, ProfitLoss: t.ProfitLoss})
	}
	return best, worst
}

// Map flattens the report into the nested shape used by the JSON output.
func (r Report) Map() map[string]any {
	return map[string]any{
		"net":                     r.Net.Map(),
		"gross":                   r.Gross.Map(),
		"total_trades":            float64(r.TotalTrades),
		"total_commissions":       r.TotalCommissions,
		"total_fees":              r.TotalFees,
		"avg_hold_time_overall":   r.AvgHoldTimeOverall,
		"avg_hold_time_winners":   r.AvgHoldTimeWinners,
		"avg_hold_time_losers":    r.AvgHoldTimeLosers,
		"avg_hold_time_scratches": r.AvgHoldTimeScratches,
		"avg_mfe":                 r.AvgMFE,
		"avg_mae":                 r.AvgMAE,
	}
}
