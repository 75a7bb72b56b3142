package equity

import (
	"sort"
	"time"
)

// Shape describes how a trade's P&L travelled between its extremes.
type Shape string

const (
	// StraightUp never traded below the entry mark before the high.
	StraightUp Shape = "straight_up"
	// StraightDown never traded above the entry mark before the low.
	StraightDown Shape = "straight_down"
	// FinishUp dipped below entry first, then made its high.
	FinishUp Shape = "finish_up"
	// FinishDown rallied above entry first, then made its low.
	FinishDown Shape = "finish_down"
	Unclassified Shape = "unclassified"
)

// Shapes lists the classified shapes in report order.
var Shapes = []Shape{StraightUp, StraightDown, FinishUp, FinishDown}

// Classify inspects the TotalPnL series of points. The entry mark is the
// first value; ties on the extremes resolve to their first occurrence.
func Classify(points []Point) Shape {
	if len(points) == 0 {
		return Unclassified
	}
	entry := points[0].TotalPnL
	minIdx, maxIdx := 0, 0
	for i, p := range points {
		if p.TotalPnL < points[minIdx].TotalPnL {
			minIdx = i
		}
		if p.TotalPnL > points[maxIdx].TotalPnL {
			maxIdx = i
		}
	}
	lo, hi := points[minIdx].TotalPnL, points[maxIdx].TotalPnL

	switch {
	case minIdx < maxIdx && lo < entry && entry < hi:
		return FinishUp
	case minIdx < maxIdx && lo == entry && entry < hi:
		return StraightUp
	case maxIdx < minIdx && lo < entry && entry < hi:
		return FinishDown
	case maxIdx < minIdx && hi == entry && entry > lo:
		return StraightDown
	}
	return Unclassified
}

// DayCount is the number of trades of each shape entered on one day.
type DayCount struct {
	Date   time.Time
	Counts map[Shape]int
}

// Curve pairs a trade's entry day with its equity points.
type Curve struct {
	EntryDate time.Time
	Points    []Point
}

// TimingCounts classifies every curve and counts shapes per entry day,
// oldest day first. Unclassified curves are not counted.
func TimingCounts(curves []Curve) []DayCount {
	byDay := make(map[time.Time]map[Shape]int)
	for _, c := range curves {
		s := Classify(c.Points)
		if s == Unclassified {
			continue
		}
		y, m, d := c.EntryDate.Date()
		key := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if byDay[key] == nil {
			byDay[key] = make(map[Shape]int)
		}
		byDay[key][s]++
	}

	out := make([]DayCount, 0, len(byDay))
	for day, counts := range byDay {
		out = append(out, DayCount{Date: day, Counts: counts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
