package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// quantile returns the p-quantile of ascending sorted values using linear
// interpolation between closest ranks, h = (n-1)p. Empty input yields NaN.
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 || n == 1 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	h := float64(n-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= n {
		return sorted[n-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// bandwidth estimates a Gaussian kernel bandwidth with the normal reference
// rule 1.06 * min(sd, IQR/1.34) * n^-0.2. Each candidate spread falls back to
// the next when it is zero or undefined: sd, then |q1|, then 1.
func bandwidth(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 1
	}

	sd := math.NaN()
	if n > 1 {
		sd = stat.StdDev(sorted, nil)
	}
	q1 := quantile(sorted, 0.25)
	iqr := (quantile(sorted, 0.75) - q1) / 1.34

	v := math.Min(sd, iqr)
	if !usable(v) {
		v = sd
	}
	if !usable(v) {
		v = math.Abs(q1)
	}
	if !usable(v) {
		v = 1
	}

	return 1.06 * v * math.Pow(float64(n), -0.2)
}

func usable(v float64) bool {
	return v != 0 && !math.IsNaN(v)
}

// gaussianKDE evaluates the kernel density estimate of samples at x with the
// given bandwidth
func gaussianKDE(samples []float64, bw, x float64) float64 {
	if len(samples) == 0 || bw <= 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += distuv.UnitNormal.Prob((x - s) / bw)
	}
	return sum / bw / float64(len(samples))
}

// linspace returns steps evenly spaced values from lo to hi inclusive
func linspace(lo, hi float64, steps int) []float64 {
	if steps < 2 {
		return []float64{lo}
	}
	out := make([]float64, steps)
	span := hi - lo
	for i := range out {
		out[i] = lo + span*float64(i)/float64(steps-1)
	}
	out[steps-1] = hi
	return out
}

// linearFit fits y = intercept + slope*x by ordinary least squares and reports
// the coefficient of determination. A flat series that the line reproduces
// exactly has R² of 1.
func linearFit(xs, ys []float64) (intercept, slope, rSquared float64) {
	intercept, slope = stat.LinearRegression(xs, ys, nil, false)
	rSquared = stat.RSquared(xs, ys, nil, intercept, slope)
	if math.IsNaN(rSquared) || math.IsInf(rSquared, 0) {
		rSquared = 0
		if perfectFit(xs, ys, intercept, slope) {
			rSquared = 1
		}
	}
	return intercept, slope, rSquared
}

func perfectFit(xs, ys []float64, intercept, slope float64) bool {
	for i := range xs {
		if math.Abs(ys[i]-(intercept+slope*xs[i])) > 1e-9 {
			return false
		}
	}
	return true
}
