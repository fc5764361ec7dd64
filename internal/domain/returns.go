package domain

import "time"

// ReturnPoint is one simple-return observation.
type ReturnPoint struct {
	Timestamp time.Time
	Value     float64 // close[i]/close[i-1] - 1
}

// ReturnSeries is an ordered sequence of simple period returns derived from
// a PriceSeries. Its length is always one less than the source series.
type ReturnSeries struct {
	Ticker string
	Points []ReturnPoint
}

// Len returns the number of return observations.
func (rs ReturnSeries) Len() int {
	return len(rs.Points)
}

// Values returns the return column.
func (rs ReturnSeries) Values() []float64 {
	out := make([]float64, len(rs.Points))
	for i, p := range rs.Points {
		out[i] = p.Value
	}
	return out
}

// Filter returns the sub-series of points whose timestamps satisfy keep.
// Point order is preserved.
func (rs ReturnSeries) Filter(keep func(time.Time) bool) ReturnSeries {
	out := ReturnSeries{Ticker: rs.Ticker}
	for _, p := range rs.Points {
		if keep(p.Timestamp) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// OnDay returns the sub-series whose points fall on the calendar date of
// day as seen in loc.
func (rs ReturnSeries) OnDay(day time.Time, loc *time.Location) ReturnSeries {
	y, m, d := day.In(loc).Date()
	return rs.Filter(func(ts time.Time) bool {
		py, pm, pd := ts.In(loc).Date()
		return py == y && pm == m && pd == d
	})
}

// BeforeDay returns the sub-series of points strictly before the calendar
// date of day as seen in loc. The fit-window convention everywhere in this
// module is exclusive of the event date itself.
func (rs ReturnSeries) BeforeDay(day time.Time, loc *time.Location) ReturnSeries {
	y, m, d := day.In(loc).Date()
	cutoff := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return rs.Filter(func(ts time.Time) bool {
		return ts.In(loc).Before(cutoff)
	})
}
