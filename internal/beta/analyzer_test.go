package beta

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/factormodel"
)

// syntheticPair builds n days of daily returns where the target follows
// the benchmark with the given beta plus small deterministic noise, then
// appends an event day carrying an extra abnormal move on the target.
func syntheticPair(n int, beta, abnormal float64) (target, bench domain.ReturnSeries, eventDate time.Time) {
	base := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	target = domain.ReturnSeries{Ticker: "HAL"}
	bench = domain.ReturnSeries{Ticker: "XLE"}

	for i := 0; i < n; i++ {
		ts := base.AddDate(0, 0, i)
		b := math.Sin(float64(i)) * 0.012
		noise := math.Sin(float64(7*i)+1.3) * 0.002
		bench.Points = append(bench.Points, domain.ReturnPoint{Timestamp: ts, Value: b})
		target.Points = append(target.Points, domain.ReturnPoint{Timestamp: ts, Value: beta*b + noise})
	}

	eventDate = base.AddDate(0, 0, n)
	benchMove := 0.01
	bench.Points = append(bench.Points, domain.ReturnPoint{Timestamp: eventDate, Value: benchMove})
	target.Points = append(target.Points, domain.ReturnPoint{Timestamp: eventDate, Value: beta*benchMove + abnormal})
	return target, bench, eventDate
}

func TestAnalyze_RecoversBetaAndAbnormal(t *testing.T) {
	target, bench, eventDate := syntheticPair(60, 0.5, 0.04)

	a := New(time.UTC)
	res, err := a.Analyze(target, bench, eventDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(res.Beta-0.5) > 0.05 {
		t.Errorf("expected beta near 0.5, got %v", res.Beta)
	}
	// Abnormal = observed - beta_hat*bench; with beta_hat near 0.5 the
	// injected 4% move dominates.
	if math.Abs(res.AbnormalReturn-0.04) > 0.005 {
		t.Errorf("expected abnormal near 0.04, got %v", res.AbnormalReturn)
	}
	// Residual noise amplitude is 0.2%, so a 4% abnormal move is far out
	// in the tail.
	if math.IsNaN(res.ZScore) || math.Abs(res.ZScore) < 1.96 {
		t.Errorf("expected significant z, got %v", res.ZScore)
	}
	if !res.Significant {
		t.Error("expected Significant to be set")
	}
	if res.SampleSize != 60 {
		t.Errorf("expected 60 history samples, got %d", res.SampleSize)
	}
	if res.Ticker != "HAL" || res.Benchmark != "XLE" {
		t.Errorf("ticker metadata not carried: %s vs %s", res.Ticker, res.Benchmark)
	}
}

func TestAnalyze_QuietEventDayNotSignificant(t *testing.T) {
	target, bench, eventDate := syntheticPair(60, 0.5, 0.0005)

	a := New(time.UTC)
	res, err := a.Analyze(target, bench, eventDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Significant {
		t.Errorf("expected insignificant result, got z=%v", res.ZScore)
	}
}

func TestAnalyze_EventDateExcludedFromFit(t *testing.T) {
	// The fit window is strictly before the event date: a huge event-day
	// move must not drag the beta.
	target, bench, eventDate := syntheticPair(60, 0.5, 0.50)

	a := New(time.UTC)
	res, err := a.Analyze(target, bench, eventDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(res.Beta-0.5) > 0.05 {
		t.Errorf("event-day move leaked into the fit: beta %v", res.Beta)
	}
}

func TestAnalyze_MissingEventDate(t *testing.T) {
	target, bench, eventDate := syntheticPair(60, 0.5, 0.04)

	// Drop the event day from the target only.
	target.Points = target.Points[:len(target.Points)-1]

	a := New(time.UTC)
	_, err := a.Analyze(target, bench, eventDate)
	if !errors.Is(err, ErrMissingEventDate) {
		t.Errorf("expected ErrMissingEventDate, got %v", err)
	}
}

func TestAnalyze_MissingBenchmarkEventDate(t *testing.T) {
	target, bench, eventDate := syntheticPair(60, 0.5, 0.04)
	bench.Points = bench.Points[:len(bench.Points)-1]

	a := New(time.UTC)
	_, err := a.Analyze(target, bench, eventDate)
	if !errors.Is(err, ErrMissingEventDate) {
		t.Errorf("expected ErrMissingEventDate, got %v", err)
	}
}

func TestAnalyze_InsufficientHistory(t *testing.T) {
	target, bench, eventDate := syntheticPair(10, 0.5, 0.04)

	a := New(time.UTC)
	_, err := a.Analyze(target, bench, eventDate)
	if !errors.Is(err, factormodel.ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyze_IntersectsMismatchedHistory(t *testing.T) {
	target, bench, eventDate := syntheticPair(70, 0.5, 0.04)

	// Punch holes in the target history; the analyzer must align on the
	// overlap instead of failing.
	kept := domain.ReturnSeries{Ticker: target.Ticker}
	for i, p := range target.Points {
		if i%10 == 3 {
			continue
		}
		kept.Points = append(kept.Points, p)
	}

	a := New(time.UTC)
	res, err := a.Analyze(kept, bench, eventDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SampleSize >= 70 {
		t.Errorf("expected reduced overlap, got %d", res.SampleSize)
	}
	if math.Abs(res.Beta-0.5) > 0.06 {
		t.Errorf("expected beta near 0.5 on the overlap, got %v", res.Beta)
	}
}
