package market

import (
	"sort"
	"time"
)

// Series is a sorted-by-time view of candles for one symbol and timeframe.
// The zero value and a nil *Series are both valid empty series.
type Series struct {
	Symbol    string
	Timeframe Timeframe
	candles   []Candle
}

// NewSeries copies the candles that match symbol and timeframe, sorts them
// by time and drops duplicate timestamps (first one wins). Candles with an
// empty Symbol or Timeframe are accepted as belonging to the series.
func NewSeries(symbol string, tf Timeframe, candles []Candle) *Series {
	out := make([]Candle, 0, len(candles))
	for _, c := range candles {
		if c.Symbol != "" && symbol != "" && c.Symbol != symbol {
			continue
		}
		if c.Timeframe != "" && tf != "" && c.Timeframe != tf {
			continue
		}
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	dedup := out[:0]
	for i, c := range out {
		if i > 0 && c.Time.Equal(dedup[len(dedup)-1].Time) {
			continue
		}
		dedup = append(dedup, c)
	}
	return &Series{Symbol: symbol, Timeframe: tf, candles: dedup}
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.candles)
}

// Candles returns the underlying candles in time order. Callers must not
// modify the returned slice.
func (s *Series) Candles() []Candle {
	if s == nil {
		return nil
	}
	return s.candles
}

// At returns the candle whose time is the latest at or before t. When every
// candle is after t the earliest candle is returned instead. ok is false
// only for an empty series.
func (s *Series) At(t time.Time) (c Candle, ok bool) {
	if s.Len() == 0 {
		return Candle{}, false
	}
	// first index with Time > t
	i := sort.Search(len(s.candles), func(i int) bool { return s.candles[i].Time.After(t) })
	if i > 0 {
		return s.candles[i-1], true
	}
	return s.candles[0], true
}

// CloseAt is At followed by the candle close.
func (s *Series) CloseAt(t time.Time) (float64, bool) {
	c, ok := s.At(t)
	if !ok {
		return 0, false
	}
	return c.Close, true
}

// Between returns the candles with start <= Time <= end.
func (s *Series) Between(start, end time.Time) []Candle {
	if s.Len() == 0 || end.Before(start) {
		return nil
	}
	lo := sort.Search(len(s.candles), func(i int) bool { return !s.candles[i].Time.Before(start) })
	hi := sort.Search(len(s.candles), func(i int) bool { return s.candles[i].Time.After(end) })
	if lo >= hi {
		return nil
	}
	return s.candles[lo:hi]
}

// Span returns the first and last candle times.
func (s *Series) Span() (first, last time.Time, ok bool) {
	if s.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	return s.candles[0].Time, s.candles[len(s.candles)-1].Time, true
}
