package equity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curve(values ...float64) []Point {
	pts := make([]Point, len(values))
	for i, v := range values {
		pts[i] = Point{TotalPnL: v}
	}
	return pts
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   Shape
	}{
		{"straight up", []float64{0, 1, 3, 2, 5}, StraightUp},
		{"finish up", []float64{0, -2, -1, 4}, FinishUp},
		{"straight down", []float64{0, -1, -3, -2}, StraightDown},
		{"finish down", []float64{0, 2, 1, -4}, FinishDown},
		{"flat", []float64{0, 0, 0}, Unclassified},
		{"empty", nil, Unclassified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(curve(tt.values...)))
		})
	}
}

func TestTimingCounts(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)

	got := TimingCounts([]Curve{
		{EntryDate: d2, Points: curve(0, 1, 2)},
		{EntryDate: d1, Points: curve(0, 1, 2)},
		{EntryDate: d1, Points: curve(0, -1, 2)},
		{EntryDate: d1, Points: curve(0, 1, 2)},
		{EntryDate: d1, Points: curve(0, 0)},
	})

	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), got[0].Date)
	assert.Equal(t, 2, got[0].Counts[StraightUp])
	assert.Equal(t, 1, got[0].Counts[FinishUp])
	assert.Equal(t, 1, got[1].Counts[StraightUp])
}
