package metrics

import (
	"math"
	"time"

	"github.com/rustyeddy/tradejournal/market"
	"github.com/rustyeddy/tradejournal/trade"
)

// ExcursionMode selects the sign convention for MAE/MFE.
type ExcursionMode string

const (
	// LiteralExcursion measures every trade as if it were long:
	// adverse is entry minus close, favorable is close minus entry.
	LiteralExcursion ExcursionMode = "literal"
	// SideAwareExcursion flips both measures for short trades.
	SideAwareExcursion ExcursionMode = "side_aware"
)

// ParseExcursionMode accepts "literal", "side_aware" or "" (literal).
func ParseExcursionMode(s string) (ExcursionMode, bool) {
	switch ExcursionMode(s) {
	case "", LiteralExcursion:
		return LiteralExcursion, true
	case SideAwareExcursion:
		return SideAwareExcursion, true
	}
	return "", false
}

// ExcursionWindow is the time range MAE/MFE are measured over: the entry
// timestamp through the exit timestamp, both inclusive. A trade that is still
// partly open ends at its last fill, and an exit without a time of day covers
// the whole exit day. ok is false when the trade lacks an entry or an exit.
func ExcursionWindow(t *trade.Trade) (from, to time.Time, ok bool) {
	if t == nil || !t.HasEntry() || !t.HasExit() {
		return time.Time{}, time.Time{}, false
	}
	if from, ok = t.EntryAt(); !ok {
		return time.Time{}, time.Time{}, false
	}
	switch {
	case t.ExitDate.IsZero():
		_, last, has := t.Fills.Span()
		if !has {
			return time.Time{}, time.Time{}, false
		}
		to = last
	case t.ExitTime == nil:
		to = trade.Date(t.ExitDate).AddDate(0, 0, 1).Add(-time.Nanosecond)
	default:
		to, _ = t.ExitAt()
	}
	return from, to, true
}

// Excursion returns the maximum adverse and favorable excursion of t over
// the candles inside ExcursionWindow. Both values are zero when the trade
// lacks an entry or exit price or no candle falls inside the window.
func Excursion(t *trade.Trade, candles []market.Candle, mode ExcursionMode) (mae, mfe float64) {
	from, to, ok := ExcursionWindow(t)
	if !ok {
		return 0, 0
	}

	sign := 1.0
	if mode == SideAwareExcursion && t.Side == trade.Short {
		sign = -1
	}

	mae, mfe = math.Inf(-1), math.Inf(-1)
	found := false
	for _, c := range candles {
		if c.Time.Before(from) || c.Time.After(to) {
			continue
		}
		found = true
		move := (c.Close - t.EntryPrice) * sign
		mae = math.Max(mae, -move)
		mfe = math.Max(mfe, move)
	}
	if !found {
		return 0, 0
	}
	return mae, mfe
}

// HoldTime is the trade's duration in minutes. With both timestamps known it
// is the exact difference; with only the dates it is whole days times 1440;
// otherwise zero.
func HoldTime(t *trade.Trade) float64 {
	if t == nil || t.EntryDate.IsZero() || t.ExitDate.IsZero() {
		return 0
	}
	if t.EntryTime != nil && t.ExitTime != nil {
		return t.ExitTime.On(t.ExitDate).Sub(t.EntryTime.On(t.EntryDate)).Minutes()
	}
	days := trade.Date(t.ExitDate).Sub(trade.Date(t.EntryDate)) / (24 * time.Hour)
	return float64(days) * 1440
}
