package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/tradejournal/trade"
)

// Mode selects whether commission is added back to P&L before aggregating.
type Mode string

const (
	Net   Mode = "net"
	Gross Mode = "gross"
)

// UnboundedProfitFactor stands in for an infinite profit factor (wins with
// no losses) so reports stay serializable.
const UnboundedProfitFactor = 1_000_000.0

// TradeSummary is the per-trade input to aggregation. ProfitLoss is net of
// commission.
type TradeSummary struct {
	ID           string
	Symbol       string
	Side         trade.Side
	ProfitLoss   float64
	Commission   float64
	Fees         float64
	ExitQuantity float64
	EntryDate    time.Time
	EntryAt      time.Time
	HoldMinutes  float64
	MAE          float64
	MFE          float64
}

// Summarize extracts the aggregation input from a trade. MAE and MFE are
// left for the caller to fill in from price data.
func Summarize(t *trade.Trade) TradeSummary {
	s := TradeSummary{
		ID:           t.ID,
		Symbol:       t.Symbol,
		Side:         t.Side,
		ProfitLoss:   t.RealizedPnL,
		Commission:   t.Commission,
		Fees:         t.Fees,
		ExitQuantity: t.ExitQuantity,
		EntryDate:    t.EntryDate,
		HoldMinutes:  HoldTime(t),
	}
	if at, ok := t.EntryAt(); ok {
		s.EntryAt = at
	}
	return s
}

// PnL returns the trade's P&L under mode.
func (s TradeSummary) PnL(mode Mode) float64 {
	if mode == Gross {
		return s.ProfitLoss + s.Commission
	}
	return s.ProfitLoss
}

// Stats is the summary of one mode.
type Stats struct {
	TotalPnL             float64 `json:"total_pnl"`
	WinRate              float64 `json:"win_rate"`
	LossRate             float64 `json:"loss_rate"`
	WinningTrades        int     `json:"winning_trades"`
	LosingTrades         int     `json:"losing_trades"`
	ScratchTrades        int     `json:"scratch_trades"`
	WinningPnL           float64 `json:"winning_pnl"`
	LosingPnL            float64 `json:"losing_pnl"`
	AvgWin               float64 `json:"avg_win"`
	AvgLoss              float64 `json:"avg_loss"`
	AvgTradePnL          float64 `json:"avg_trade_pnl"`
	AvgPnLPerShare       float64 `json:"avg_pnl_per_share"`
	MedianPnL            float64 `json:"median_pnl"`
	LargestGain          float64 `json:"largest_gain"`
	LargestLoss          float64 `json:"largest_loss"`
	TotalWins            float64 `json:"total_wins"`
	TotalLosses          float64 `json:"total_losses"`
	RiskReward           float64 `json:"risk_reward"`
	ProfitFactor         float64 `json:"profit_factor"`
	TradePnLStd          float64 `json:"trade_pnl_std"`
	SharpeRatio          float64 `json:"sharpe_ratio"`
	MaxDrawdown          float64 `json:"max_drawdown"`
	SQN                  float64 `json:"sqn"`
	KRatio               float64 `json:"k_ratio"`
	KellyPercent         float64 `json:"kelly_percent"`
	PValue               float64 `json:"p_value"`
	MaxConsecutiveWins   int     `json:"max_consecutive_wins"`
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	AvgDailyPnL          float64 `json:"avg_daily_pnl"`
	AvgDailyVolume       float64 `json:"avg_daily_volume"`
}

// emptyStats is the summary of no trades. Only the p-value is non-zero.
func emptyStats() Stats { return Stats{PValue: 1} }

// Map flattens s to metric name and value.
func (s Stats) Map() map[string]float64 {
	return map[string]float64{
		"total_pnl":              s.TotalPnL,
		"win_rate":               s.WinRate,
		"loss_rate":              s.LossRate,
		"winning_trades":         float64(s.WinningTrades),
		"losing_trades":          float64(s.LosingTrades),
		"scratch_trades":         float64(s.ScratchTrades),
		"winning_pnl":            s.WinningPnL,
		"losing_pnl":             s.LosingPnL,
		"avg_win":                s.AvgWin,
		"avg_loss":               s.AvgLoss,
		"avg_trade_pnl":          s.AvgTradePnL,
		"avg_pnl_per_share":      s.AvgPnLPerShare,
		"median_pnl":             s.MedianPnL,
		"largest_gain":           s.LargestGain,
		"largest_loss":           s.LargestLoss,
		"total_wins":             s.TotalWins,
		"total_losses":           s.TotalLosses,
		"risk_reward":            s.RiskReward,
		"profit_factor":          s.ProfitFactor,
		"trade_pnl_std":          s.TradePnLStd,
		"sharpe_ratio":           s.SharpeRatio,
		"max_drawdown":           s.MaxDrawdown,
		"sqn":                    s.SQN,
		"k_ratio":                s.KRatio,
		"kelly_percent":          s.KellyPercent,
		"p_value":                s.PValue,
		"max_consecutive_wins":   float64(s.MaxConsecutiveWins),
		"max_consecutive_losses": float64(s.MaxConsecutiveLosses),
		"avg_daily_pnl":          s.AvgDailyPnL,
		"avg_daily_volume":       s.AvgDailyVolume,
	}
}

// chronological returns a copy of trades in a total order: entry time, then
// ID, then P&L. Aggregation is therefore independent of input order.
func chronological(trades []TradeSummary) []TradeSummary {
	out := append([]TradeSummary(nil), trades...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryAt.Equal(b.EntryAt) {
			return a.EntryAt.Before(b.EntryAt)
		}
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		return a.ProfitLoss < b.ProfitLoss
	})
	return out
}

// computeStats summarises trades, which must already be in chronological
// order.
func computeStats(trades []TradeSummary, mode Mode, pv PValueEstimator) Stats {
	n := len(trades)
	if n == 0 {
		return emptyStats()
	}

	pnl := make([]float64, n)
	var volume float64
	for i, t := range trades {
		pnl[i] = t.PnL(mode)
		volume += t.ExitQuantity
	}

	var s Stats
	var wins, losses []float64
	for _, p := range pnl {
		s.TotalPnL += p
		switch {
		case p > 0:
			wins = append(wins, p)
			s.TotalWins += p
		case p < 0:
			losses = append(losses, p)
			s.TotalLosses += -p
		default:
			s.ScratchTrades++
		}
	}
	s.WinningTrades = len(wins)
	s.LosingTrades = len(losses)
	s.WinningPnL = s.TotalWins
	s.LosingPnL = -s.TotalLosses
	s.WinRate = float64(len(wins)) / float64(n) * 100
	s.LossRate = float64(len(losses)) / float64(n) * 100
	s.AvgWin = mean(wins)
	s.AvgLoss = mean(losses)
	s.AvgTradePnL = s.TotalPnL / float64(n)
	if volume > 0 {
		s.AvgPnLPerShare = round(s.TotalPnL/volume, 4)
	}
	s.MedianPnL = median(pnl)
	s.LargestGain, s.LargestLoss = minMax(pnl)

	if s.AvgLoss != 0 {
		s.RiskReward = s.AvgWin / math.Abs(s.AvgLoss)
	}
	switch {
	case s.TotalLosses > 0:
		s.ProfitFactor = s.TotalWins / s.TotalLosses
	case s.TotalWins > 0:
		s.ProfitFactor = UnboundedProfitFactor
	}

	if n > 1 {
		s.TradePnLStd = popStd(pnl)
	}
	if s.TradePnLStd != 0 {
		s.SharpeRatio = mean(pnl) / s.TradePnLStd
	}
	s.MaxDrawdown = maxDrawdown(pnl)
	s.MaxConsecutiveWins, s.MaxConsecutiveLosses = streaks(pnl)

	s.PValue = 1
	if n >= 2 {
		if sd := popStd(pnl); sd != 0 {
			s.SQN = round(mean(pnl)/sd*math.Sqrt(float64(n)), 2)
		}
		s.KRatio = round(kRatio(pnl), 2)
		s.KellyPercent = round(kelly(float64(len(wins))/float64(n), float64(len(losses))/float64(n), s.AvgWin, s.AvgLoss), 2)
		s.PValue = round(pv.PValue(pnl), 4)
	}

	days := tradingDays(trades)
	s.AvgDailyPnL = round(s.TotalPnL/days, 2)
	s.AvgDailyVolume = round(volume/days, 2)
	return s
}

// maxDrawdown is the largest fall of cumulative P&L from its running peak.
// The peak starts at zero, so an opening loss counts as drawdown.
func maxDrawdown(pnl []float64) float64 {
	cum := make([]float64, len(pnl))
	var run float64
	for i, p := range pnl {
		run += p
		cum[i] = run
	}
	return maxDrawdownOfCumulative(cum)
}

// maxDrawdownOfCumulative is maxDrawdown over an already-cumulative series.
func maxDrawdownOfCumulative(cum []float64) float64 {
	var peak, dd float64
	for _, c := range cum {
		peak = math.Max(peak, c)
		dd = math.Max(dd, peak-c)
	}
	return dd
}

// streaks returns the longest runs of positive and negative P&L. A scratch
// trade ends both runs.
func streaks(pnl []float64) (wins, losses int) {
	var w, l int
	for _, p := range pnl {
		switch {
		case p > 0:
			w++
			l = 0
		case p < 0:
			l++
			w = 0
		default:
			w, l = 0, 0
		}
		wins = max(wins, w)
		losses = max(losses, l)
	}
	return wins, losses
}

// kRatio fits cumulative P&L against trade index and divides the slope by
// the population standard deviation of the residuals.
func kRatio(pnl []float64) float64 {
	n := len(pnl)
	if n < 2 {
		return 0
	}
	cum := make([]float64, n)
	x := make([]float64, n)
	var run float64
	for i, p := range pnl {
		run += p
		cum[i] = run
		x[i] = float64(i)
	}

	intercept, slope := stat.LinearRegression(x, cum, nil, false)

	resid := make([]float64, n)
	for i := range cum {
		resid[i] = cum[i] - (slope*x[i] + intercept)
	}
	sd := popStd(resid)
	if sd < 1e-12 {
		return 0
	}
	return slope / sd
}

// kelly is only defined for a win fraction strictly between 0 and 1. Scratch
// trades count toward neither fraction.
func kelly(winFrac, lossFrac, avgWin, avgLoss float64) float64 {
	if winFrac <= 0 || winFrac >= 1 || avgWin == 0 {
		return 0
	}
	return (winFrac*avgWin - lossFrac*math.Abs(avgLoss)) / avgWin * 100
}

// tradingDays spans the first to last entry date, inclusive, and is at
// least one.
func tradingDays(trades []TradeSummary) float64 {
	var first, last time.Time
	for _, t := range trades {
		if t.EntryDate.IsZero() {
			continue
		}
		d := trade.Date(t.EntryDate)
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
	}
	if first.IsZero() {
		return 1
	}
	days := float64(last.Sub(first)/(24*time.Hour)) + 1
	return math.Max(days, 1)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// popStd divides by n.
func popStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(xs, nil)
	return math.Sqrt(v)
}

// sampleStd divides by n-1 and is zero below two values.
func sampleStd(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func minMax(xs []float64) (hi, lo float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	hi, lo = xs[0], xs[0]
	for _, x := range xs[1:] {
		hi = math.Max(hi, x)
		lo = math.Min(lo, x)
	}
	return hi, lo
}

// round rounds half away from zero to places decimals. Non-finite input
// becomes zero.
func round(x float64, places int32) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}
