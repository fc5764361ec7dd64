package domain

import (
	"math"
	"testing"
)

func TestNewSampleDistribution_SortsAndComputesMoments(t *testing.T) {
	d := NewSampleDistribution([]float64{3, 1, 2})

	if d.Len() != 3 {
		t.Fatalf("expected 3 values, got %d", d.Len())
	}
	for i, want := range []float64{1, 2, 3} {
		if d.Values[i] != want {
			t.Errorf("Values[%d]: expected %v, got %v", i, want, d.Values[i])
		}
	}
	if d.Mean != 2 {
		t.Errorf("expected mean 2, got %v", d.Mean)
	}
	// Sample std of {1,2,3} = sqrt((1+0+1)/2) = 1
	if math.Abs(d.Std-1) > 1e-12 {
		t.Errorf("expected std 1, got %v", d.Std)
	}
}

func TestNewSampleDistribution_Empty(t *testing.T) {
	d := NewSampleDistribution(nil)

	if d.Len() != 0 {
		t.Errorf("expected empty, got %d values", d.Len())
	}
	if d.Mean != 0 || d.Std != 0 {
		t.Errorf("expected zero moments, got mean=%v std=%v", d.Mean, d.Std)
	}
}

func TestPercentileRank_StrictlyLess(t *testing.T) {
	d := NewSampleDistribution([]float64{1, 2, 3, 4, 5})

	// The sample maximum ranks at 100*(n-1)/n, never 100.
	if got := d.PercentileRank(5); got != 80 {
		t.Errorf("rank of max: expected 80, got %v", got)
	}
	// A value above every sample ranks at 100.
	if got := d.PercentileRank(6); got != 100 {
		t.Errorf("rank above max: expected 100, got %v", got)
	}
	// A value at or below the minimum ranks at 0.
	if got := d.PercentileRank(1); got != 0 {
		t.Errorf("rank of min: expected 0, got %v", got)
	}
	if got := d.PercentileRank(0); got != 0 {
		t.Errorf("rank below min: expected 0, got %v", got)
	}
	// Ties are excluded from the count.
	if got := d.PercentileRank(3); got != 40 {
		t.Errorf("rank of 3: expected 40, got %v", got)
	}
}

func TestPercentileRank_EmptyDistribution(t *testing.T) {
	d := NewSampleDistribution(nil)
	if got := d.PercentileRank(1); !math.IsNaN(got) {
		t.Errorf("expected NaN on empty distribution, got %v", got)
	}
}

func TestZScore_ZeroStdYieldsNaN(t *testing.T) {
	d := NewSampleDistribution([]float64{2, 2, 2})
	if got := d.ZScore(5); !math.IsNaN(got) {
		t.Errorf("expected NaN on zero std, got %v", got)
	}
}

func TestZScore(t *testing.T) {
	d := NewSampleDistribution([]float64{1, 2, 3})
	// mean=2, std=1
	if got := d.ZScore(4); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected z=2, got %v", got)
	}
}
