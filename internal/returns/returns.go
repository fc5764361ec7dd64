// Package returns derives simple period returns from aligned price series.
package returns

import "github.com/aristotle-tek/caracas-signal/internal/domain"

// Simple converts a price series to simple period returns on the close:
// r[i] = close[i]/close[i-1] - 1. The first bar is dropped (no prior
// close), so the output has len(bars)-1 points. A series of length <= 1
// yields an empty return series, not an error.
func Simple(s domain.PriceSeries) domain.ReturnSeries {
	out := domain.ReturnSeries{Ticker: s.Ticker}
	if s.Len() <= 1 {
		return out
	}
	out.Points = make([]domain.ReturnPoint, 0, s.Len()-1)
	for i := 1; i < len(s.Bars); i++ {
		out.Points = append(out.Points, domain.ReturnPoint{
			Timestamp: s.Bars[i].Timestamp,
			Value:     s.Bars[i].Close/s.Bars[i-1].Close - 1,
		})
	}
	return out
}
