// Package align normalizes raw price series to a trading session and
// reindexes multiple series onto a shared timestamp index.
package align

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// ErrDataGap is returned when the common index left after alignment is too
// short for downstream fitting.
var ErrDataGap = errors.New("data gap: insufficient common bars after alignment")

// DefaultMinCommonBars is the default floor on the shared index size.
const DefaultMinCommonBars = 30

// TimeOfDay is a wall-clock instant within a session, in the aligner's
// timezone.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) minutes() int {
	return t.Hour*60 + t.Minute
}

// String formats as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// Aligner restricts series to a trading session and aligns them to a
// common index. The zero value is not usable; construct with New.
type Aligner struct {
	Location     *time.Location
	SessionOpen  TimeOfDay // inclusive
	SessionClose TimeOfDay // inclusive
	MinBars      int       // minimum shared index size for Intersect
}

// New returns an Aligner for the given session. MinBars defaults to
// DefaultMinCommonBars.
func New(loc *time.Location, open, close TimeOfDay) Aligner {
	return Aligner{
		Location:     loc,
		SessionOpen:  open,
		SessionClose: close,
		MinBars:      DefaultMinCommonBars,
	}
}

// Normalize converts all timestamps to the aligner's timezone, drops
// duplicate timestamps keeping the first occurrence, sorts ascending, and
// restricts to bars whose time of day falls within the session window
// (both bounds inclusive). The input is not modified.
func (a Aligner) Normalize(s domain.PriceSeries) domain.PriceSeries {
	out := domain.PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	seen := make(map[int64]struct{}, len(s.Bars))
	for _, b := range s.Bars {
		key := b.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		local := b.Timestamp.In(a.Location)
		mins := local.Hour()*60 + local.Minute()
		if mins < a.SessionOpen.minutes() || mins > a.SessionClose.minutes() {
			continue
		}
		b.Timestamp = local
		out.Bars = append(out.Bars, b)
	}
	sort.SliceStable(out.Bars, func(i, j int) bool {
		return out.Bars[i].Timestamp.Before(out.Bars[j].Timestamp)
	})
	return out
}

// NormalizeDaily converts timestamps to the aligner's timezone, drops
// duplicates keeping the first occurrence, and sorts ascending. Daily
// bars are stamped at the session open or midnight depending on the
// source, so no session time-of-day filter applies.
func (a Aligner) NormalizeDaily(s domain.PriceSeries) domain.PriceSeries {
	out := domain.PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	seen := make(map[int64]struct{}, len(s.Bars))
	for _, b := range s.Bars {
		key := b.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		b.Timestamp = b.Timestamp.In(a.Location)
		out.Bars = append(out.Bars, b)
	}
	sort.SliceStable(out.Bars, func(i, j int) bool {
		return out.Bars[i].Timestamp.Before(out.Bars[j].Timestamp)
	})
	return out
}

// RestrictToDates keeps only bars falling on one of the given calendar
// dates, interpreted in the aligner's timezone.
func (a Aligner) RestrictToDates(s domain.PriceSeries, days []time.Time) domain.PriceSeries {
	allowed := make(map[string]struct{}, len(days))
	for _, d := range days {
		allowed[d.In(a.Location).Format("2006-01-02")] = struct{}{}
	}
	out := domain.PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	for _, b := range s.Bars {
		if _, ok := allowed[b.Timestamp.In(a.Location).Format("2006-01-02")]; ok {
			out.Bars = append(out.Bars, b)
		}
	}
	return out
}

// Intersect reindexes two or more normalized series to the intersection of
// their timestamp sets, guaranteeing bar-for-bar simultaneity. Outputs are
// equal-length, identically timestamped, and never longer than the
// shortest input. Returns ErrDataGap when the shared index has fewer than
// MinBars entries.
func (a Aligner) Intersect(series ...domain.PriceSeries) ([]domain.PriceSeries, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("intersect requires at least 2 series, got %d", len(series))
	}

	common := make(map[int64]struct{}, series[0].Len())
	for _, b := range series[0].Bars {
		common[b.Timestamp.UnixNano()] = struct{}{}
	}
	for _, s := range series[1:] {
		present := make(map[int64]struct{}, s.Len())
		for _, b := range s.Bars {
			key := b.Timestamp.UnixNano()
			if _, ok := common[key]; ok {
				present[key] = struct{}{}
			}
		}
		common = present
	}

	if len(common) < a.MinBars {
		return nil, fmt.Errorf("%w: %d common bars, need %d", ErrDataGap, len(common), a.MinBars)
	}

	out := make([]domain.PriceSeries, len(series))
	for i, s := range series {
		aligned := domain.PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
		for _, b := range s.Bars {
			if _, ok := common[b.Timestamp.UnixNano()]; ok {
				aligned.Bars = append(aligned.Bars, b)
			}
		}
		out[i] = aligned
	}
	return out, nil
}

// UnionForwardFill reindexes a pair of normalized series to the union of
// their timestamps, forward-filling each side from its last seen bar. Used
// to pair series with slightly offset tick times (ETF vs futures) where a
// small fill gap is acceptable. Leading timestamps where either side has
// no prior bar are dropped, so both outputs start together.
func (a Aligner) UnionForwardFill(x, y domain.PriceSeries) (domain.PriceSeries, domain.PriceSeries) {
	union := make(map[int64]time.Time, x.Len()+y.Len())
	for _, b := range x.Bars {
		union[b.Timestamp.UnixNano()] = b.Timestamp
	}
	for _, b := range y.Bars {
		union[b.Timestamp.UnixNano()] = b.Timestamp
	}
	keys := make([]int64, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	outX := domain.PriceSeries{Ticker: x.Ticker, Interval: x.Interval}
	outY := domain.PriceSeries{Ticker: y.Ticker, Interval: y.Interval}

	xi, yi := 0, 0
	var lastX, lastY *domain.PriceBar
	for _, k := range keys {
		ts := union[k]
		for xi < len(x.Bars) && !x.Bars[xi].Timestamp.After(ts) {
			lastX = &x.Bars[xi]
			xi++
		}
		for yi < len(y.Bars) && !y.Bars[yi].Timestamp.After(ts) {
			lastY = &y.Bars[yi]
			yi++
		}
		if lastX == nil || lastY == nil {
			continue
		}
		bx := *lastX
		bx.Timestamp = ts
		by := *lastY
		by.Timestamp = ts
		outX.Bars = append(outX.Bars, bx)
		outY.Bars = append(outY.Bars, by)
	}
	return outX, outY
}
