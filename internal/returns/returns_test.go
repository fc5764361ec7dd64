package returns

import (
	"math"
	"testing"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

func series(closes ...float64) domain.PriceSeries {
	base := time.Date(2026, 1, 2, 9, 30, 0, 0, time.UTC)
	s := domain.PriceSeries{Ticker: "XLE", Interval: domain.Interval5Min}
	for i, c := range closes {
		s.Bars = append(s.Bars, domain.PriceBar{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Close:     c,
		})
	}
	return s
}

func TestSimple_LengthAndValues(t *testing.T) {
	rs := Simple(series(100, 101, 99.99))

	// N bars yield N-1 returns; the first bar has no prior close.
	if rs.Len() != 2 {
		t.Fatalf("expected 2 points, got %d", rs.Len())
	}
	if math.Abs(rs.Points[0].Value-0.01) > 1e-12 {
		t.Errorf("expected first return 0.01, got %v", rs.Points[0].Value)
	}
	if math.Abs(rs.Points[1].Value-(99.99/101-1)) > 1e-12 {
		t.Errorf("expected second return %v, got %v", 99.99/101-1, rs.Points[1].Value)
	}
	// Each point keeps the timestamp of its own bar, not the prior one.
	if !rs.Points[0].Timestamp.Equal(time.Date(2026, 1, 2, 9, 35, 0, 0, time.UTC)) {
		t.Errorf("unexpected first timestamp %v", rs.Points[0].Timestamp)
	}
}

func TestSimple_CompoundingReproducesTotalReturn(t *testing.T) {
	s := series(100, 103, 97, 104, 101.5)
	rs := Simple(s)

	cum := 1.0
	for _, p := range rs.Points {
		cum *= 1 + p.Value
	}
	want := s.Bars[len(s.Bars)-1].Close / s.Bars[0].Close
	if math.Abs(cum-want) > 1e-12 {
		t.Errorf("compounded %v, want %v", cum, want)
	}
}

func TestSimple_ShortSeries(t *testing.T) {
	if rs := Simple(series(100)); rs.Len() != 0 {
		t.Errorf("single bar: expected empty, got %d points", rs.Len())
	}
	if rs := Simple(series()); rs.Len() != 0 {
		t.Errorf("empty series: expected empty, got %d points", rs.Len())
	}
}
