// Package baseline builds empirical distributions of per-day statistics
// over a historical window, the placebo side of the event study: the
// event day's value is ranked against what ordinary days produce.
package baseline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// ErrNoSample is returned by DayValue when the requested day has too few
// aligned bars to evaluate the statistic.
var ErrNoSample = errors.New("too few aligned bars on day")

// DefaultMinBarsPerDay excludes partial sessions (half days, late opens)
// from the baseline.
const DefaultMinBarsPerDay = 30

// DayStat evaluates one scalar statistic over a single day's aligned
// target and reference slices. Reference may be empty for single-series
// statistics. ok=false excludes the day.
type DayStat func(target, reference domain.PriceSeries) (value float64, ok bool)

// Tester partitions a baseline range into calendar days and collects a
// per-day statistic into a SampleDistribution.
type Tester struct {
	Location      *time.Location
	MinBarsPerDay int
}

// New returns a Tester with the default per-day bar minimum.
func New(loc *time.Location) Tester {
	return Tester{Location: loc, MinBarsPerDay: DefaultMinBarsPerDay}
}

// Collect partitions the baseline range by the date component of the
// target's index in the tester's timezone, aligns each day's slices to
// their common timestamps, and evaluates stat per day. Days with fewer
// than MinBarsPerDay aligned bars are silently excluded; partial
// sessions are expected, not failures.
func (t Tester) Collect(target, reference domain.PriceSeries, stat DayStat) domain.SampleDistribution {
	var values []float64
	for _, day := range t.days(target) {
		if v, err := t.DayValue(target, reference, day, stat); err == nil {
			values = append(values, v)
		}
	}
	return domain.NewSampleDistribution(values)
}

// DayValue evaluates stat for a single calendar day. Returns ErrNoSample
// when the day has too few aligned bars or the statistic declines it.
func (t Tester) DayValue(target, reference domain.PriceSeries, day time.Time, stat DayStat) (float64, error) {
	dayTarget := target.OnDay(day, t.Location)
	dayRef := reference.OnDay(day, t.Location)
	if dayRef.Len() > 0 {
		dayTarget, dayRef = intersectBars(dayTarget, dayRef)
	}
	if dayTarget.Len() < t.MinBarsPerDay {
		return 0, fmt.Errorf("%w: %s has %d bars on %s, need %d",
			ErrNoSample, target.Ticker, dayTarget.Len(),
			day.In(t.Location).Format("2006-01-02"), t.MinBarsPerDay)
	}
	v, ok := stat(dayTarget, dayRef)
	if !ok {
		return 0, fmt.Errorf("%w: statistic undefined for %s on %s",
			ErrNoSample, target.Ticker, day.In(t.Location).Format("2006-01-02"))
	}
	return v, nil
}

// days returns the unique calendar dates of the series in ascending order.
func (t Tester) days(s domain.PriceSeries) []time.Time {
	seen := make(map[string]time.Time, 64)
	for _, b := range s.Bars {
		local := b.Timestamp.In(t.Location)
		key := local.Format("2006-01-02")
		if _, ok := seen[key]; !ok {
			y, m, d := local.Date()
			seen[key] = time.Date(y, m, d, 0, 0, 0, 0, t.Location)
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// intersectBars reindexes two day slices to their common timestamps.
func intersectBars(x, y domain.PriceSeries) (domain.PriceSeries, domain.PriceSeries) {
	inY := make(map[int64]domain.PriceBar, y.Len())
	for _, b := range y.Bars {
		inY[b.Timestamp.UnixNano()] = b
	}
	outX := domain.PriceSeries{Ticker: x.Ticker, Interval: x.Interval}
	outY := domain.PriceSeries{Ticker: y.Ticker, Interval: y.Interval}
	for _, b := range x.Bars {
		if yb, ok := inY[b.Timestamp.UnixNano()]; ok {
			outX.Bars = append(outX.Bars, b)
			outY.Bars = append(outY.Bars, yb)
		}
	}
	return outX, outY
}
