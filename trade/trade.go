package trade

import (
	"math"
	"time"
)

// quantityEpsilon absorbs float drift when comparing summed quantities.
const quantityEpsilon = 1e-9

// Trade is the aggregate of all fills on one position. Side is fixed at
// creation. Entry and exit prices are quantity-weighted averages of the
// entry-direction and exit-direction fills respectively.
//
// A zero EntryDate or ExitDate means unset; nil EntryTime or ExitTime means
// the time of day is unknown.
type Trade struct {
	ID         string
	Symbol     string
	Side       Side
	StrategyID string

	EntryPrice    float64
	EntryQuantity float64
	ExitPrice     float64
	ExitQuantity  float64

	Commission  float64
	Fees        float64
	RealizedPnL float64

	StopLoss   float64
	TakeProfit float64

	EntryDate time.Time
	EntryTime *TimeOfDay
	ExitDate  time.Time
	ExitTime  *TimeOfDay

	Fills Ledger
}

// New returns an empty trade on symbol.
func New(id, symbol string, side Side) *Trade {
	return &Trade{ID: id, Symbol: symbol, Side: side}
}

// HasEntry reports whether at least one entry-direction fill was applied.
func (t *Trade) HasEntry() bool { return t.EntryQuantity > 0 }

// HasExit reports whether at least one exit-direction fill was applied.
func (t *Trade) HasExit() bool { return t.ExitQuantity > 0 }

// OpenQuantity is the part of the position not yet closed.
func (t *Trade) OpenQuantity() float64 {
	q := t.EntryQuantity - t.ExitQuantity
	if q < quantityEpsilon {
		return 0
	}
	return q
}

// Closed reports whether every unit entered has been exited.
func (t *Trade) Closed() bool {
	return t.HasEntry() && sameQuantity(t.EntryQuantity, t.ExitQuantity)
}

// Open is the complement of Closed for a trade with at least one fill.
func (t *Trade) Open() bool { return !t.Closed() }

// EntryAt returns the entry timestamp. ok is false without an entry date;
// a missing time of day is taken as midnight.
func (t *Trade) EntryAt() (at time.Time, ok bool) {
	return combine(t.EntryDate, t.EntryTime)
}

// ExitAt is EntryAt for the exit side.
func (t *Trade) ExitAt() (at time.Time, ok bool) {
	return combine(t.ExitDate, t.ExitTime)
}

// GrossPnL is the realized P&L with commission added back.
func (t *Trade) GrossPnL() float64 {
	return t.RealizedPnL + t.Commission
}

func combine(date time.Time, tod *TimeOfDay) (time.Time, bool) {
	if date.IsZero() {
		return time.Time{}, false
	}
	if tod == nil {
		return Date(date), true
	}
	return tod.On(date), true
}

func sameQuantity(a, b float64) bool {
	return math.Abs(a-b) <= quantityEpsilon*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
