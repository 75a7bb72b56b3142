package trade

import (
	"math"
	"sort"
	"time"
)

// Fill is a single executed transaction. Date carries the calendar day and
// Time the UTC time of day; At combines them.
type Fill struct {
	ID         string
	TradeID    string
	Date       time.Time
	Time       TimeOfDay
	Price      float64
	Quantity   float64
	Commission float64
	Side       Side
}

// At returns the full UTC timestamp of the fill.
func (f Fill) At() time.Time {
	return f.Time.On(f.Date)
}

// Validate rejects non-positive price or quantity, negative commission,
// an unknown side and a missing date.
func (f Fill) Validate() error {
	switch {
	case math.IsNaN(f.Price) || math.IsInf(f.Price, 0) || f.Price <= 0:
		return invalid("price", f.Price, "must be positive")
	case math.IsNaN(f.Quantity) || math.IsInf(f.Quantity, 0) || f.Quantity <= 0:
		return invalid("quantity", f.Quantity, "must be positive")
	case math.IsNaN(f.Commission) || math.IsInf(f.Commission, 0) || f.Commission < 0:
		return invalid("commission", f.Commission, "must not be negative")
	case !f.Side.Valid():
		return invalid("side", f.Side, "must be LONG or SHORT")
	case f.Date.IsZero():
		return invalid("date", f.Date, "is required")
	}
	return nil
}

// Ledger is the append-only list of fills owned by one trade, in insertion order.
type Ledger []Fill

// Sorted returns a copy ordered by full timestamp. Fills at the same instant
// keep their insertion order.
func (l Ledger) Sorted() []Fill {
	out := make([]Fill, len(l))
	copy(out, l)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At().Before(out[j].At()) })
	return out
}

// Span returns the timestamps of the first and last fill.
func (l Ledger) Span() (first, last time.Time, ok bool) {
	if len(l) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = l[0].At(), l[0].At()
	for _, f := range l[1:] {
		at := f.At()
		if at.Before(first) {
			first = at
		}
		if at.After(last) {
			last = at
		}
	}
	return first, last, true
}

// Commission sums the commission of every fill.
func (l Ledger) Commission() float64 {
	var sum float64
	for _, f := range l {
		sum += f.Commission
	}
	return sum
}
