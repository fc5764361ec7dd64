// Package study orchestrates the full forensic event study: intraday leak
// detection, factor-model CAR scoring, beta batches, placebo
// distributions, and the historical reaction table. The runner wires the
// provider to the statistical engines; every method is a pure function of
// fetched series and the runner's thresholds.
package study

import (
	"context"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/align"
	"github.com/aristotle-tek/caracas-signal/internal/baseline"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/eventwindow"
	"github.com/aristotle-tek/caracas-signal/internal/factormodel"
	"github.com/aristotle-tek/caracas-signal/internal/provider"
	"github.com/aristotle-tek/caracas-signal/internal/returns"
)

// Runner executes study steps against one provider and one session
// definition.
type Runner struct {
	Provider provider.Provider
	Aligner  align.Aligner

	MinIntradayBars int
	MinDailyBars    int
	MinBarsPerDay   int
	SignificanceZ   float64
}

// SpreadPoint is one bar of the event-day leak report.
type SpreadPoint struct {
	Timestamp     time.Time
	TargetNorm    float64 // target close rebased to session open
	ReferenceNorm float64
	Spread        float64 // TargetNorm - ReferenceNorm
}

// LeakReport is the intraday decoupling report for one event day: the
// target's outperformance over the reference pair, bar by bar, with the
// peak spread and peak volume moments.
type LeakReport struct {
	Date      time.Time
	Target    string
	Reference string

	Spread []SpreadPoint

	MaxSpread     float64
	MaxSpreadTime time.Time
	MaxVolume     int64
	MaxVolumeTime time.Time
}

// LeakReport pairs the target and reference on the event day via
// union-plus-forward-fill (their tick times are slightly offset), rebases
// both to the session open, and locates the peak spread and the peak
// volume bar.
func (r *Runner) LeakReport(ctx context.Context, target, reference string, day time.Time) (*LeakReport, error) {
	start := day
	end := day.AddDate(0, 0, 1)

	rawTarget, err := r.Provider.FetchOrLoad(ctx, target, start, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("leak report: %w", err)
	}
	rawRef, err := r.Provider.FetchOrLoad(ctx, reference, start, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("leak report: %w", err)
	}

	dayTarget := r.Aligner.Normalize(*rawTarget).OnDay(day, r.Aligner.Location)
	dayRef := r.Aligner.Normalize(*rawRef).OnDay(day, r.Aligner.Location)
	if dayTarget.Len() == 0 || dayRef.Len() == 0 {
		return nil, fmt.Errorf("leak report: %w", eventwindow.ErrEmptyWindow)
	}

	fTarget, fRef := r.Aligner.UnionForwardFill(dayTarget, dayRef)
	if fTarget.Len() == 0 {
		return nil, fmt.Errorf("leak report: %w", eventwindow.ErrEmptyWindow)
	}

	rep := &LeakReport{Date: day, Target: target, Reference: reference}
	t0 := fTarget.Bars[0].Close
	r0 := fRef.Bars[0].Close
	for i := range fTarget.Bars {
		p := SpreadPoint{
			Timestamp:     fTarget.Bars[i].Timestamp,
			TargetNorm:    fTarget.Bars[i].Close / t0,
			ReferenceNorm: fRef.Bars[i].Close / r0,
		}
		p.Spread = p.TargetNorm - p.ReferenceNorm
		rep.Spread = append(rep.Spread, p)

		if i == 0 || p.Spread > rep.MaxSpread {
			rep.MaxSpread = p.Spread
			rep.MaxSpreadTime = p.Timestamp
		}
	}
	// Peak volume comes from the raw target bars, not the filled pair:
	// forward-filled bars repeat stale volume.
	for _, b := range dayTarget.Bars {
		if b.Volume > rep.MaxVolume {
			rep.MaxVolume = b.Volume
			rep.MaxVolumeTime = b.Timestamp
		}
	}

	return rep, nil
}

// FactorReport carries the fitted intraday factor model and the scored
// event window.
type FactorReport struct {
	Fit   *domain.FactorModelFit
	Event *domain.EventWindowResult

	// BaselineCorrelation is the fit-window Pearson correlation of the
	// target's returns with each factor's, in factor order.
	BaselineCorrelation []float64
}

// FactorCAR fits the intraday factor model over the baseline window
// (strictly before the event date) and scores the event day. A non-zero
// boundary reports the pre/post sub-window split.
func (r *Runner) FactorCAR(ctx context.Context, target string, factorTickers []string, baselineStart, eventDay time.Time, boundary time.Time) (*FactorReport, error) {
	end := eventDay.AddDate(0, 0, 1)

	rawTarget, err := r.Provider.FetchOrLoad(ctx, target, baselineStart, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("factor car: %w", err)
	}
	raw := []domain.PriceSeries{r.Aligner.Normalize(*rawTarget)}
	for _, ft := range factorTickers {
		s, err := r.Provider.FetchOrLoad(ctx, ft, baselineStart, end, domain.Interval5Min)
		if err != nil {
			return nil, fmt.Errorf("factor car: %w", err)
		}
		raw = append(raw, r.Aligner.Normalize(*s))
	}

	aligned, err := r.Aligner.Intersect(raw...)
	if err != nil {
		return nil, fmt.Errorf("factor car: %w", err)
	}

	targetRets := returns.Simple(aligned[0])
	factorRets := make([]domain.ReturnSeries, len(factorTickers))
	for i := range factorTickers {
		factorRets[i] = returns.Simple(aligned[i+1])
	}

	loc := r.Aligner.Location
	y, m, d := eventDay.In(loc).Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, loc)
	within := func(ts time.Time) bool { return ts.In(loc).Before(cutoff) }

	fit, err := factormodel.Fit(targetRets, factorRets, within, r.MinIntradayBars)
	if err != nil {
		return nil, fmt.Errorf("factor car: %w", err)
	}

	rep := &FactorReport{Fit: fit}
	baseTarget := targetRets.Filter(within)
	for _, fr := range factorRets {
		rep.BaselineCorrelation = append(rep.BaselineCorrelation,
			factormodel.Correlation(baseTarget.Values(), fr.Filter(within).Values()))
	}

	eventTarget := targetRets.OnDay(eventDay, loc)
	eventFactors := make([]domain.ReturnSeries, len(factorRets))
	for i, fr := range factorRets {
		eventFactors[i] = fr.OnDay(eventDay, loc)
	}

	engine := eventwindow.New(fit)
	if boundary.IsZero() {
		rep.Event, err = engine.Score(eventTarget, eventFactors)
	} else {
		rep.Event, err = engine.ScoreSplit(eventTarget, eventFactors, boundary)
	}
	if err != nil {
		return nil, fmt.Errorf("factor car: %w", err)
	}

	return rep, nil
}

// tester builds the baseline distribution tester for this runner.
func (r *Runner) tester() baseline.Tester {
	t := baseline.New(r.Aligner.Location)
	if r.MinBarsPerDay > 0 {
		t.MinBarsPerDay = r.MinBarsPerDay
	}
	return t
}
