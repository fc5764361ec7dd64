package study

import (
	"context"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/align"
	"github.com/aristotle-tek/caracas-signal/internal/baseline"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// PlaceboResult ranks an event-day statistic against the empirical
// distribution of the same statistic across baseline days.
type PlaceboResult struct {
	Statistic string
	Target    string
	Reference string // empty for single-series statistics

	Distribution domain.SampleDistribution
	EventValue   float64
	Percentile   float64 // strictly-less rank of the event value
	ZScore       float64 // NaN when the baseline has zero spread
}

// SpreadPlacebo builds the distribution of daily max normalized spreads
// between target and reference over the baseline range (strictly before
// baselineEnd) and ranks the event day against it. Baseline days with too
// few aligned bars are excluded, not errors.
func (r *Runner) SpreadPlacebo(ctx context.Context, target, reference string, baselineStart, baselineEnd, eventDay time.Time) (*PlaceboResult, error) {
	end := eventDay.AddDate(0, 0, 1)

	rawTarget, err := r.Provider.FetchOrLoad(ctx, target, baselineStart, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("spread placebo: %w", err)
	}
	rawRef, err := r.Provider.FetchOrLoad(ctx, reference, baselineStart, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("spread placebo: %w", err)
	}

	aligned, err := r.Aligner.Intersect(r.Aligner.Normalize(*rawTarget), r.Aligner.Normalize(*rawRef))
	if err != nil {
		return nil, fmt.Errorf("spread placebo: %w", err)
	}

	tester := r.tester()
	dist := tester.Collect(aligned[0].Before(baselineEnd), aligned[1].Before(baselineEnd), baseline.MaxNormalizedSpread)
	if dist.Len() == 0 {
		return nil, fmt.Errorf("spread placebo: no usable baseline days")
	}

	eventValue, err := tester.DayValue(aligned[0], aligned[1], eventDay, baseline.MaxNormalizedSpread)
	if err != nil {
		return nil, fmt.Errorf("spread placebo: event day: %w", err)
	}

	return &PlaceboResult{
		Statistic:    "max normalized spread",
		Target:       target,
		Reference:    reference,
		Distribution: dist,
		EventValue:   eventValue,
		Percentile:   dist.PercentileRank(eventValue),
		ZScore:       dist.ZScore(eventValue),
	}, nil
}

// VolumeSpike ranks the target's event-day volume on the bar at tod
// (e.g. the 15:55 market-on-close bar) against the distribution of the
// same bar's volume across baseline days.
func (r *Runner) VolumeSpike(ctx context.Context, target string, tod align.TimeOfDay, baselineStart, baselineEnd, eventDay time.Time) (*PlaceboResult, error) {
	end := eventDay.AddDate(0, 0, 1)

	raw, err := r.Provider.FetchOrLoad(ctx, target, baselineStart, end, domain.Interval5Min)
	if err != nil {
		return nil, fmt.Errorf("volume spike: %w", err)
	}
	series := r.Aligner.Normalize(*raw)

	stat := baseline.VolumeAt(tod.Hour, tod.Minute, r.Aligner.Location)
	tester := r.tester()
	dist := tester.Collect(series.Before(baselineEnd), domain.PriceSeries{}, stat)
	if dist.Len() == 0 {
		return nil, fmt.Errorf("volume spike: no %s bars in baseline", tod)
	}

	eventValue, err := tester.DayValue(series, domain.PriceSeries{}, eventDay, stat)
	if err != nil {
		return nil, fmt.Errorf("volume spike: event day: %w", err)
	}

	return &PlaceboResult{
		Statistic:    fmt.Sprintf("volume at %s", tod),
		Target:       target,
		Distribution: dist,
		EventValue:   eventValue,
		Percentile:   dist.PercentileRank(eventValue),
		ZScore:       dist.ZScore(eventValue),
	}, nil
}

// RotationSpread is one event-day sector-vs-benchmark session return
// spread, the rotation sanity check that the move was not market-wide.
type RotationSpread struct {
	Ticker          string
	Benchmark       string
	TickerReturn    float64
	BenchmarkReturn float64
	Spread          float64
}

// RotationCheck computes the event-day session (close over open) return
// spread for each sector/benchmark pair. Pairs with missing data are
// dropped rather than failing the check.
func (r *Runner) RotationCheck(ctx context.Context, pairs [][2]string, day time.Time) []RotationSpread {
	tester := r.tester()
	end := day.AddDate(0, 0, 1)

	var out []RotationSpread
	for _, pair := range pairs {
		var rets [2]float64
		ok := true
		for i, ticker := range pair {
			raw, err := r.Provider.FetchOrLoad(ctx, ticker, day, end, domain.Interval5Min)
			if err != nil {
				ok = false
				break
			}
			v, err := tester.DayValue(r.Aligner.Normalize(*raw), domain.PriceSeries{}, day, baseline.SessionReturn)
			if err != nil {
				ok = false
				break
			}
			rets[i] = v
		}
		if !ok {
			continue
		}
		out = append(out, RotationSpread{
			Ticker:          pair[0],
			Benchmark:       pair[1],
			TickerReturn:    rets[0],
			BenchmarkReturn: rets[1],
			Spread:          rets[0] - rets[1],
		})
	}
	return out
}
