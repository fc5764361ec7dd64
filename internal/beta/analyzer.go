// Package beta is the daily-granularity, single-factor specialization of
// the factor model: it scores one ticker's event-day return against its
// beta to a benchmark fitted over pre-event history.
package beta

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/factormodel"
)

// ErrMissingEventDate is returned when the event date is absent from the
// target or benchmark index (non-trading day, data gap, or never
// downloaded). It is a soft skip: batch callers drop the ticker and
// continue rather than aborting the run.
var ErrMissingEventDate = errors.New("event date absent from return index")

// DefaultSignificanceZ is the two-sided 5% threshold on |z|.
const DefaultSignificanceZ = 1.96

// Analyzer fits beta over history strictly before the event date and
// scores the event-day abnormal return.
type Analyzer struct {
	Location *time.Location

	// MinSamples is the minimum overlapping history length for the beta
	// fit. Defaults to factormodel.DefaultMinDailySamples via New.
	MinSamples int

	// SignificanceZ flags |z| above this as significant. Fixed per study,
	// not a per-call parameter.
	SignificanceZ float64
}

// New returns an Analyzer with default thresholds.
func New(loc *time.Location) Analyzer {
	return Analyzer{
		Location:      loc,
		MinSamples:    factormodel.DefaultMinDailySamples,
		SignificanceZ: DefaultSignificanceZ,
	}
}

// Analyze scores the target's event-day return against the benchmark.
//
// Beta comes from an OLS fit with intercept over the overlapping history
// strictly before the event date, but the expected return and residuals
// use beta alone: over short windows alpha is treated as zero, so
// expected = beta * benchmark return and residual_i = target_i -
// beta*benchmark_i. The z-score divides the abnormal return by the sample
// std of those residuals; a zero std yields a NaN z-score, not an error.
func (a Analyzer) Analyze(target, benchmark domain.ReturnSeries, eventDate time.Time) (*domain.BetaAnalysisResult, error) {
	targetHist := target.BeforeDay(eventDate, a.Location)
	benchHist := benchmark.BeforeDay(eventDate, a.Location)
	alignedTarget, alignedBench := intersect(targetHist, benchHist)

	if alignedTarget.Len() < a.MinSamples {
		return nil, fmt.Errorf("%w: %d overlapping history bars, need %d",
			factormodel.ErrInsufficientData, alignedTarget.Len(), a.MinSamples)
	}

	fit, err := factormodel.Fit(alignedTarget, []domain.ReturnSeries{alignedBench}, nil, a.MinSamples)
	if err != nil {
		return nil, fmt.Errorf("beta fit for %s: %w", target.Ticker, err)
	}
	b := fit.Slopes[0]

	eventTarget := target.OnDay(eventDate, a.Location)
	eventBench := benchmark.OnDay(eventDate, a.Location)
	if eventTarget.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no return on %s",
			ErrMissingEventDate, target.Ticker, eventDate.In(a.Location).Format("2006-01-02"))
	}
	if eventBench.Len() == 0 {
		return nil, fmt.Errorf("%w: %s has no return on %s",
			ErrMissingEventDate, benchmark.Ticker, eventDate.In(a.Location).Format("2006-01-02"))
	}
	observed := eventTarget.Points[0].Value
	benchObserved := eventBench.Points[0].Value

	expected := b * benchObserved
	abnormal := observed - expected

	residuals := make([]float64, alignedTarget.Len())
	for i := range alignedTarget.Points {
		residuals[i] = alignedTarget.Points[i].Value - b*alignedBench.Points[i].Value
	}
	residStd := factormodel.SampleStd(residuals)

	z := math.NaN()
	if residStd != 0 {
		z = abnormal / residStd
	}

	return &domain.BetaAnalysisResult{
		Ticker:          target.Ticker,
		Benchmark:       benchmark.Ticker,
		EventDate:       eventDate,
		Beta:            b,
		EventReturn:     observed,
		BenchmarkReturn: benchObserved,
		ExpectedReturn:  expected,
		AbnormalReturn:  abnormal,
		ZScore:          z,
		Significant:     !math.IsNaN(z) && math.Abs(z) > a.SignificanceZ,
		SampleSize:      alignedTarget.Len(),
	}, nil
}

// intersect reindexes two return series to their common timestamps,
// preserving ascending order.
func intersect(x, y domain.ReturnSeries) (domain.ReturnSeries, domain.ReturnSeries) {
	inY := make(map[int64]float64, y.Len())
	for _, p := range y.Points {
		inY[p.Timestamp.UnixNano()] = p.Value
	}
	outX := domain.ReturnSeries{Ticker: x.Ticker}
	outY := domain.ReturnSeries{Ticker: y.Ticker}
	for _, p := range x.Points {
		if v, ok := inY[p.Timestamp.UnixNano()]; ok {
			outX.Points = append(outX.Points, p)
			outY.Points = append(outY.Points, domain.ReturnPoint{Timestamp: p.Timestamp, Value: v})
		}
	}
	return outX, outY
}
