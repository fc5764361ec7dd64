// Package factormodel fits ordinary-least-squares factor models of a
// target return series on one or more factor return series plus an
// intercept.
package factormodel

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// ErrInsufficientData is returned when the fit window holds fewer bars
// than the configured minimum sample size.
var ErrInsufficientData = errors.New("insufficient data in fit window")

// Minimum sample sizes by granularity. Intraday fits need a longer sample
// because 5m residuals are noisier than daily ones.
const (
	DefaultMinIntradaySamples = 100
	DefaultMinDailySamples    = 30
)

// Fit runs OLS of target on [1, factors...] restricted to bars whose
// timestamp satisfies within. Factor series must be pre-aligned to the
// target's index (same length, same timestamps). minSamples gates the fit;
// use DefaultMinIntradaySamples or DefaultMinDailySamples.
//
// Residual homoscedasticity is a stated modeling assumption: the residual
// std from this fit is later reused for event-window z-scores. No
// regularization is applied.
func Fit(target domain.ReturnSeries, factors []domain.ReturnSeries, within func(time.Time) bool, minSamples int) (*domain.FactorModelFit, error) {
	if len(factors) == 0 {
		return nil, fmt.Errorf("fit requires at least one factor series")
	}
	for _, f := range factors {
		if f.Len() != target.Len() {
			return nil, fmt.Errorf("factor %s not aligned to target %s: %d vs %d points",
				f.Ticker, target.Ticker, f.Len(), target.Len())
		}
	}

	// Gather the fit window.
	var y []float64
	xs := make([][]float64, len(factors))
	for i, p := range target.Points {
		if within != nil && !within(p.Timestamp) {
			continue
		}
		y = append(y, p.Value)
		for j := range factors {
			xs[j] = append(xs[j], factors[j].Points[i].Value)
		}
	}

	n := len(y)
	if n < minSamples {
		return nil, fmt.Errorf("%w: %d bars, need %d", ErrInsufficientData, n, minSamples)
	}

	coef, err := solveOLS(y, xs)
	if err != nil {
		return nil, err
	}

	fit := &domain.FactorModelFit{
		TargetTicker: target.Ticker,
		Intercept:    coef[0],
		Slopes:       coef[1:],
		SampleSize:   n,
	}
	for _, f := range factors {
		fit.FactorTickers = append(fit.FactorTickers, f.Ticker)
	}

	// In-sample residuals, residual std, R-squared.
	meanY := mean(y)
	ssRes, ssTot := 0.0, 0.0
	fit.Residuals = make([]float64, n)
	row := make([]float64, len(factors))
	for i := 0; i < n; i++ {
		for j := range xs {
			row[j] = xs[j][i]
		}
		r := y[i] - fit.Predict(row)
		fit.Residuals[i] = r
		ssRes += r * r
		d := y[i] - meanY
		ssTot += d * d
	}
	fit.ResidualStd = SampleStd(fit.Residuals)
	if ssTot > 0 {
		fit.RSquared = 1 - ssRes/ssTot
	}

	return fit, nil
}

// solveOLS solves the normal equations (X'X)b = X'y for a design matrix
// with an intercept column followed by one column per factor. Factor
// counts here are tiny (1-3), so Gaussian elimination with partial
// pivoting on a (k+1)x(k+1) system is plenty.
func solveOLS(y []float64, xs [][]float64) ([]float64, error) {
	n := len(y)
	p := len(xs) + 1

	row := func(i int) []float64 {
		r := make([]float64, p)
		r[0] = 1
		for j, x := range xs {
			r[j+1] = x[i]
		}
		return r
	}

	// Build X'X and X'y.
	a := make([][]float64, p)
	for i := range a {
		a[i] = make([]float64, p+1) // augmented with X'y
	}
	for i := 0; i < n; i++ {
		r := row(i)
		for j := 0; j < p; j++ {
			for k := 0; k < p; k++ {
				a[j][k] += r[j] * r[k]
			}
			a[j][p] += r[j] * y[i]
		}
	}

	// Gaussian elimination with partial pivoting.
	for col := 0; col < p; col++ {
		pivot := col
		for r := col + 1; r < p; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		a[col], a[pivot] = a[pivot], a[col]
		if a[col][col] == 0 {
			return nil, fmt.Errorf("singular design matrix: collinear or constant factors")
		}
		for r := col + 1; r < p; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= p; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	coef := make([]float64, p)
	for r := p - 1; r >= 0; r-- {
		v := a[r][p]
		for c := r + 1; c < p; c++ {
			v -= a[r][c] * coef[c]
		}
		coef[r] = v / a[r][r]
	}
	return coef, nil
}

// SampleStd computes the sample standard deviation (n-1 denominator).
// Fewer than two values yields 0.
func SampleStd(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Correlation computes the Pearson correlation of two equal-length return
// columns. Mismatched or too-short inputs yield NaN.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	mx, my := mean(x), mean(y)
	var sxy, sxx, syy float64
	for i := range x {
		dx := x[i] - mx
		dy := y[i] - my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}
