package domain

import "time"

// EventWindowResult scores an event window against a fitted factor model.
// Ephemeral: handed to reporting, never persisted.
type EventWindowResult struct {
	Timestamps []time.Time
	Observed   []float64
	Predicted  []float64
	Abnormal   []float64 // observed - predicted, per bar

	// CumulativeAbnormal[i] is the abnormal return compounded from the
	// window start through bar i: prod(1+abnormal[0..i]) - 1.
	CumulativeAbnormal []float64

	CAR float64 // cumulative abnormal return at window close

	// Sub-window split at the boundary timestamp, when one was given.
	// CARAtBoundary compounds bars strictly before the boundary;
	// UnexplainedSurge = CAR - CARAtBoundary isolates abnormal movement
	// strictly after it. Both are NaN when no boundary was set.
	Boundary         time.Time
	CARAtBoundary    float64
	UnexplainedSurge float64

	// CARStd is sqrt(n) * residual std, a deliberate approximation that
	// treats residuals as independent.
	CARStd float64
	ZScore float64 // CAR / CARStd; NaN when CARStd is zero

	Bars int
}

// BetaAnalysisResult is the per-ticker output of the daily single-factor
// beta analyzer.
type BetaAnalysisResult struct {
	Ticker    string
	Benchmark string
	EventDate time.Time

	Beta            float64
	EventReturn     float64 // target single-day return on the event date
	BenchmarkReturn float64
	ExpectedReturn  float64 // Beta * BenchmarkReturn, alpha treated as 0
	AbnormalReturn  float64 // EventReturn - ExpectedReturn

	ZScore      float64 // AbnormalReturn / std(historical residuals); NaN when std is 0
	Significant bool    // |ZScore| above the analyzer's threshold
	SampleSize  int     // history bars used for the beta fit
}
