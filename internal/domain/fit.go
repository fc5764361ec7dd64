package domain

// FactorModelFit is the result of an OLS fit of a target return series on
// one or more factor return series plus an intercept, over a baseline
// window. Created once per (target, factor set, window) and reused across
// event-window queries; never mutated after the fit.
type FactorModelFit struct {
	TargetTicker  string
	FactorTickers []string

	Intercept float64   // alpha
	Slopes    []float64 // one per factor, same order as FactorTickers

	Residuals   []float64 // in-sample residuals in fit-window order
	ResidualStd float64   // sample standard deviation (n-1)
	RSquared    float64
	SampleSize  int // bars used in the fit
}

// Predict returns the model's expected return for one bar of factor
// observations. len(factors) must equal len(Slopes).
func (f *FactorModelFit) Predict(factors []float64) float64 {
	y := f.Intercept
	for i, x := range factors {
		y += f.Slopes[i] * x
	}
	return y
}
