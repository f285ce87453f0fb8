package core

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation is a Pearson coefficient that may be undefined.
type Correlation struct {
	Value   float64
	Defined bool
}

// Trend is the least-squares line y = Intercept + Slope*x.
type Trend struct {
	Intercept float64
	Slope     float64
	Defined   bool
}

// At evaluates the trend line at x.
func (t Trend) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// Pearson computes the correlation between x and y. It is undefined for
// fewer than two points or when either series is constant.
func Pearson(x, y []float64) Correlation {
	if !regressable(x, y) || constant(y) {
		return Correlation{}
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return Correlation{}
	}
	return Correlation{Value: math.Max(-1, math.Min(1, r)), Defined: true}
}

// FitTrend fits recovery against damage with ordinary least squares.
// A constant y still has a defined (flat) line; a constant x does not.
func FitTrend(x, y []float64) Trend {
	if !regressable(x, y) {
		return Trend{}
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Trend{}
	}
	return Trend{Intercept: alpha, Slope: beta, Defined: true}
}

func regressable(x, y []float64) bool {
	return len(x) >= 2 && len(x) == len(y) && !constant(x)
}

// constant reports whether every value equals the first one. Exact
// comparison avoids treating rounding noise in a computed variance as spread.
func constant(v []float64) bool {
	if len(v) == 0 {
		return true
	}
	for _, x := range v[1:] {
		if x != v[0] {
			return false
		}
	}
	return true
}
