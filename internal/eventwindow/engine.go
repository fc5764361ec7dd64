// Package eventwindow applies a fitted factor model to an event window,
// producing per-bar abnormal returns, compounded CARs, and z-scores.
package eventwindow

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// ErrEmptyWindow is returned when the event window holds zero bars after
// filtering.
var ErrEmptyWindow = errors.New("empty event window")

// Engine scores event windows against one fitted factor model. The fit is
// reusable across any number of windows.
type Engine struct {
	Fit *domain.FactorModelFit
}

// New returns an Engine for the given fit.
func New(fit *domain.FactorModelFit) *Engine {
	return &Engine{Fit: fit}
}

// Score computes abnormal returns and the compounded CAR over the event
// window. Factor series must be pre-aligned to the target's index. The
// CAR standard deviation is sqrt(n) * residual std, which assumes
// independent residuals; the z-score is CAR over that. A zero residual
// std yields a NaN z-score while the rest of the result stays valid.
func (e *Engine) Score(target domain.ReturnSeries, factors []domain.ReturnSeries) (*domain.EventWindowResult, error) {
	return e.score(target, factors, time.Time{})
}

// ScoreSplit is Score with a sub-window boundary: it additionally reports
// the CAR compounded over bars strictly before the boundary and the
// unexplained surge CAR(close) - CAR(boundary), isolating abnormal
// movement strictly after the boundary.
func (e *Engine) ScoreSplit(target domain.ReturnSeries, factors []domain.ReturnSeries, boundary time.Time) (*domain.EventWindowResult, error) {
	if boundary.IsZero() {
		return nil, fmt.Errorf("score split: boundary timestamp is zero")
	}
	return e.score(target, factors, boundary)
}

func (e *Engine) score(target domain.ReturnSeries, factors []domain.ReturnSeries, boundary time.Time) (*domain.EventWindowResult, error) {
	if len(factors) != len(e.Fit.Slopes) {
		return nil, fmt.Errorf("got %d factor series, fit has %d slopes", len(factors), len(e.Fit.Slopes))
	}
	for _, f := range factors {
		if f.Len() != target.Len() {
			return nil, fmt.Errorf("factor %s not aligned to target %s: %d vs %d points",
				f.Ticker, target.Ticker, f.Len(), target.Len())
		}
	}

	n := target.Len()
	if n == 0 {
		return nil, ErrEmptyWindow
	}

	res := &domain.EventWindowResult{
		Timestamps:         make([]time.Time, n),
		Observed:           make([]float64, n),
		Predicted:          make([]float64, n),
		Abnormal:           make([]float64, n),
		CumulativeAbnormal: make([]float64, n),
		Bars:               n,
		Boundary:           boundary,
		CARAtBoundary:      math.NaN(),
		UnexplainedSurge:   math.NaN(),
	}

	row := make([]float64, len(factors))
	cum := 1.0
	for i, p := range target.Points {
		for j := range factors {
			row[j] = factors[j].Points[i].Value
		}
		pred := e.Fit.Predict(row)
		ab := p.Value - pred

		res.Timestamps[i] = p.Timestamp
		res.Observed[i] = p.Value
		res.Predicted[i] = pred
		res.Abnormal[i] = ab

		// CAR is compounded, never summed.
		cum *= 1 + ab
		res.CumulativeAbnormal[i] = cum - 1
	}
	res.CAR = res.CumulativeAbnormal[n-1]

	if !boundary.IsZero() {
		// Compound bars strictly before the boundary; zero such bars
		// means a zero pre-boundary CAR.
		pre := 1.0
		for i, ts := range res.Timestamps {
			if !ts.Before(boundary) {
				break
			}
			pre *= 1 + res.Abnormal[i]
		}
		res.CARAtBoundary = pre - 1
		res.UnexplainedSurge = res.CAR - res.CARAtBoundary
	}

	res.CARStd = math.Sqrt(float64(n)) * e.Fit.ResidualStd
	if res.CARStd == 0 {
		res.ZScore = math.NaN()
	} else {
		res.ZScore = res.CAR / res.CARStd
	}

	return res, nil
}
