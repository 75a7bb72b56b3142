package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproximateTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		t    float64
		df   int
		want float64
	}{
		{"below every threshold", 1.0, 4, 0.2},
		{"p 0.05", 2.8, 4, 0.05},
		{"p 0.01", 4.7, 4, 0.01},
		{"p 0.001", 9.0, 4, 0.001},
		{"df 7 uses 5", 2.4, 7, 0.2},
		{"df 8 uses 10", 2.4, 8, 0.05},
		{"df 27 ties to 25", 2.055, 27, 0.2},
		{"df 28 uses 29", 2.05, 28, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tableP(tt.t, tt.df))
		})
	}
}

func TestApproximatePValue(t *testing.T) {
	t.Parallel()

	var e Approximate
	assert.Equal(t, 1.0, e.PValue(nil))
	assert.Equal(t, 1.0, e.PValue([]float64{5}))
	assert.Equal(t, 1.0, e.PValue([]float64{3, 3, 3}))
	assert.Equal(t, 0.2, e.PValue([]float64{0, 2}))

	large := make([]float64, 40)
	for i := range large {
		large[i] = float64(1 + 2*(i%2))
	}
	p := e.PValue(large)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.Less(t, p, 0.001)
}

func TestApproxNormalCDF(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{0.1, 0.5, 1, 2, 3} {
		assert.InDelta(t, 1.0, approxNormalCDF(x)+approxNormalCDF(-x), 1e-12)
		assert.Greater(t, approxNormalCDF(x+0.1), approxNormalCDF(x))
	}
	assert.InDelta(t, 1.0, approxNormalCDF(6), 1e-9)
}

func TestStudentT(t *testing.T) {
	t.Parallel()

	var e StudentT
	// n=2, t=1: p = 1 - 2/pi*atan(1) = 0.5
	assert.InDelta(t, 0.5, e.PValue([]float64{0, 2}), 1e-9)
	assert.Equal(t, 1.0, e.PValue([]float64{1}))
	assert.Equal(t, 1.0, e.PValue([]float64{2, 2}))

	assert.InDelta(t, 0.05, studentTwoTailed(12.706, 1), 1e-4)
	assert.InDelta(t, 0.05, studentTwoTailed(2.228, 10), 1e-3)
	assert.InDelta(t, 0.01, studentTwoTailed(3.169, 10), 1e-3)
	assert.InDelta(t, 0.05, studentTwoTailed(2.045, 29), 1e-3)
	assert.InDelta(t, 1.0, studentTwoTailed(0, 5), 1e-12)
}

func TestPValueByName(t *testing.T) {
	t.Parallel()

	e, ok := PValueByName("")
	assert.True(t, ok)
	assert.Equal(t, "approximate", e.Name())

	e, ok = PValueByName("student_t")
	assert.True(t, ok)
	assert.Equal(t, "student_t", e.Name())

	_, ok = PValueByName("bootstrap")
	assert.False(t, ok)
}

func TestAggregatorUsesEstimator(t *testing.T) {
	t.Parallel()

	trades := summaries(0, 2)
	assert.Equal(t, 0.2, NewAggregator().Stats(trades, Net).PValue)
	assert.Equal(t, 0.5, NewAggregator(WithPValue(StudentT{})).Stats(trades, Net).PValue)
}
