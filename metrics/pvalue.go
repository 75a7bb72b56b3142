package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PValueEstimator returns the two-tailed p-value of a one-sample t-test of
// pnl against a zero mean. Implementations return 1 when fewer than two
// values are given or the sample standard deviation is zero, and always
// return a value in [0, 1].
type PValueEstimator interface {
	PValue(pnl []float64) float64
	Name() string
}

// Approximate is the coarse estimator used by the journal reports. Above 30
// samples it uses the normal approximation below; otherwise it buckets the
// t statistic against a small table of critical values and can only answer
// 0.001, 0.01, 0.05 or 0.2.
type Approximate struct{}

func (Approximate) Name() string { return "approximate" }

func (Approximate) PValue(pnl []float64) float64 {
	t, n, ok := tStatistic(pnl)
	if !ok {
		return 1
	}
	t = math.Abs(t)
	if n > 30 {
		return clamp01(2 * (1 - approxNormalCDF(t)))
	}
	return clamp01(tableP(t, n-1))
}

// criticalT holds two-tailed critical values for p = 0.1, 0.02, 0.002.
var criticalT = []struct {
	df     int
	values [3]float64
}{
	{1, [3]float64{12.706, 63.657, 636.619}},
	{2, [3]float64{4.303, 9.925, 31.599}},
	{3, [3]float64{3.182, 5.841, 12.924}},
	{4, [3]float64{2.776, 4.604, 8.610}},
	{5, [3]float64{2.571, 4.032, 6.869}},
	{10, [3]float64{2.228, 3.169, 4.587}},
	{15, [3]float64{2.131, 2.947, 4.073}},
	{20, [3]float64{2.086, 2.845, 3.850}},
	{25, [3]float64{2.060, 2.787, 3.725}},
	{29, [3]float64{2.045, 2.756, 3.659}},
}

func tableP(t float64, df int) float64 {
	best := 0
	for i, row := range criticalT {
		if abs(row.df-df) < abs(criticalT[best].df-df) {
			best = i
		}
	}
	v := criticalT[best].values
	switch {
	case t >= v[2]:
		return 0.001
	case t >= v[1]:
		return 0.01
	case t >= v[0]:
		return 0.05
	}
	return 0.2
}

// approxNormalCDF is the Abramowitz-Stegun 7.1.26 rational approximation
// evaluated at x directly (no 1/sqrt(2) scaling). Published reports depend
// on these exact values.
func approxNormalCDF(x float64) float64 {
	if x < 0 {
		return 1 - approxNormalCDF(-x)
	}
	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)
	t := 1 / (1 + p*x)
	return 1 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)
}

// StudentT computes the exact two-tailed p-value from the Student t
// distribution with n-1 degrees of freedom.
type StudentT struct{}

func (StudentT) Name() string { return "student_t" }

func (StudentT) PValue(pnl []float64) float64 {
	t, n, ok := tStatistic(pnl)
	if !ok {
		return 1
	}
	return clamp01(studentTwoTailed(t, float64(n-1)))
}

// studentTwoTailed is P(|T| >= |t|) for T with df degrees of freedom.
func studentTwoTailed(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return 2 * dist.Survival(math.Abs(t))
}

// PValueByName maps a configuration value to an estimator.
func PValueByName(name string) (PValueEstimator, bool) {
	switch name {
	case "", "approximate":
		return Approximate{}, true
	case "student_t":
		return StudentT{}, true
	}
	return nil, false
}

func tStatistic(pnl []float64) (t float64, n int, ok bool) {
	n = len(pnl)
	if n < 2 {
		return 0, n, false
	}
	sd := sampleStd(pnl)
	if sd == 0 || math.IsNaN(sd) {
		return 0, n, false
	}
	return mean(pnl) / (sd / math.Sqrt(float64(n))), n, true
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 1
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
