package reporting

import (
	"fmt"
	"strings"

	"github.com/aristotle-tek/caracas-signal/internal/study"
)

// RenderBetaCSV renders beta outcomes as CSV string. Skipped and failed
// tickers keep their row with the note column filled, so the output always
// has one line per requested ticker.
func RenderBetaCSV(outcomes []study.TickerOutcome) string {
	var sb strings.Builder

	// Header
	sb.WriteString("ticker,benchmark,beta,event_return,benchmark_return,expected_return,abnormal_return,z_score,significant,samples,note\n")

	// Rows
	for _, o := range outcomes {
		switch {
		case o.Result != nil:
			res := o.Result
			sb.WriteString(fmt.Sprintf("%s,%s,%.6f,%.6f,%.6f,%.6f,%.6f,%.4f,%t,%d,\n",
				res.Ticker,
				res.Benchmark,
				res.Beta,
				res.EventReturn,
				res.BenchmarkReturn,
				res.ExpectedReturn,
				res.AbnormalReturn,
				res.ZScore,
				res.Significant,
				res.SampleSize,
			))
		case o.Skipped():
			sb.WriteString(fmt.Sprintf("%s,,,,,,,,,,skipped: %s\n", o.Ticker, o.SkipReason))
		default:
			sb.WriteString(fmt.Sprintf("%s,,,,,,,,,,error: %v\n", o.Ticker, o.Err))
		}
	}

	return sb.String()
}

// RenderSpreadCSV renders the intraday leak spread bar by bar.
func RenderSpreadCSV(rep *study.LeakReport) string {
	var sb strings.Builder

	sb.WriteString("timestamp,target_norm,reference_norm,spread\n")
	for _, p := range rep.Spread {
		sb.WriteString(fmt.Sprintf("%s,%.6f,%.6f,%.6f\n",
			p.Timestamp.Format("2006-01-02T15:04:05"),
			p.TargetNorm,
			p.ReferenceNorm,
			p.Spread,
		))
	}

	return sb.String()
}
