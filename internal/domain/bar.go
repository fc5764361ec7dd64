package domain

import "time"

// Bar intervals supported by the provider and stores.
const (
	Interval5Min  = "5m"
	IntervalDaily = "1d"
)

// PriceBar is a single OHLCV bar for one instrument.
type PriceBar struct {
	Timestamp time.Time // timezone-aware bar start
	Open      float64
	High      float64
	Low       float64
	Close     float64 // must be > 0
	Volume    int64   // must be >= 0
}

// PriceSeries is an ordered sequence of bars for one instrument.
// Series produced by the aligner have unique, strictly increasing
// timestamps and are treated as immutable by every downstream component.
type PriceSeries struct {
	Ticker   string
	Interval string // Interval5Min or IntervalDaily
	Bars     []PriceBar
}

// Len returns the number of bars.
func (s PriceSeries) Len() int {
	return len(s.Bars)
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Before returns the sub-series of bars strictly before cutoff.
func (s PriceSeries) Before(cutoff time.Time) PriceSeries {
	out := PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	for _, b := range s.Bars {
		if b.Timestamp.Before(cutoff) {
			out.Bars = append(out.Bars, b)
		}
	}
	return out
}

// OnDay returns the sub-series whose bars fall on the calendar date of day
// as seen in loc. Bar order is preserved.
func (s PriceSeries) OnDay(day time.Time, loc *time.Location) PriceSeries {
	y, m, d := day.In(loc).Date()
	out := PriceSeries{Ticker: s.Ticker, Interval: s.Interval}
	for _, b := range s.Bars {
		by, bm, bd := b.Timestamp.In(loc).Date()
		if by == y && bm == m && bd == d {
			out.Bars = append(out.Bars, b)
		}
	}
	return out
}
