package domain

import (
	"math"
	"sort"
)

// SampleDistribution is an empirical distribution of per-day scalar
// statistics collected over a baseline window.
type SampleDistribution struct {
	Values []float64 // sorted ascending
	Mean   float64
	Std    float64 // sample standard deviation (n-1)
}

// NewSampleDistribution sorts values and computes summary moments.
func NewSampleDistribution(values []float64) SampleDistribution {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	if len(sorted) > 0 {
		mean /= float64(len(sorted))
	}

	std := 0.0
	if len(sorted) >= 2 {
		ss := 0.0
		for _, v := range sorted {
			d := v - mean
			ss += d * d
		}
		std = math.Sqrt(ss / float64(len(sorted)-1))
	}

	return SampleDistribution{Values: sorted, Mean: mean, Std: std}
}

// Len returns the sample size.
func (d SampleDistribution) Len() int {
	return len(d.Values)
}

// PercentileRank returns 100 times the fraction of sample values strictly
// less than v. Ties are excluded: the sample maximum ranks at
// 100*(n-1)/n, and a value below the minimum ranks at 0.
func (d SampleDistribution) PercentileRank(v float64) float64 {
	if len(d.Values) == 0 {
		return math.NaN()
	}
	// Values are sorted; count entries < v.
	i := sort.SearchFloat64s(d.Values, v)
	return 100 * float64(i) / float64(len(d.Values))
}

// ZScore returns how many sample standard deviations v lies from the mean.
// A zero or undefined std yields NaN: no meaningful test is possible, but
// the rest of the distribution remains valid.
func (d SampleDistribution) ZScore(v float64) float64 {
	if d.Std == 0 {
		return math.NaN()
	}
	return (v - d.Mean) / d.Std
}
