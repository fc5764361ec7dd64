package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Event Study Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.EventName != "" {
		sb.WriteString(fmt.Sprintf("Event: %s (%s)\n\n", r.EventName, r.EventDate.Format("2006-01-02")))
	}

	// Intraday decoupling
	if r.Leak != nil {
		sb.WriteString("## Intraday Decoupling\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Pair | %s vs %s |\n", r.Leak.Target, r.Leak.Reference))
		sb.WriteString(fmt.Sprintf("| Bars | %d |\n", len(r.Leak.Spread)))
		sb.WriteString(fmt.Sprintf("| Max Spread | %.4f%% |\n", r.Leak.MaxSpread*100))
		sb.WriteString(fmt.Sprintf("| Max Spread Time | %s |\n", r.Leak.MaxSpreadTime.Format("15:04")))
		sb.WriteString(fmt.Sprintf("| Max Volume | %d |\n", r.Leak.MaxVolume))
		sb.WriteString(fmt.Sprintf("| Max Volume Time | %s |\n", r.Leak.MaxVolumeTime.Format("15:04")))
		sb.WriteString("\n")
	}

	// Factor model
	if r.Factor != nil && r.Factor.Fit != nil {
		fit := r.Factor.Fit
		sb.WriteString("## Factor Model\n\n")
		sb.WriteString(fmt.Sprintf("Target: %s | Factors: %s | Samples: %d | R²: %.4f\n\n",
			fit.TargetTicker, strings.Join(fit.FactorTickers, ", "), fit.SampleSize, fit.RSquared))
		sb.WriteString("| Factor | Slope | Baseline Corr |\n")
		sb.WriteString("|--------|-------|---------------|\n")
		for i, ft := range fit.FactorTickers {
			corr := math.NaN()
			if i < len(r.Factor.BaselineCorrelation) {
				corr = r.Factor.BaselineCorrelation[i]
			}
			sb.WriteString(fmt.Sprintf("| %s | %.4f | %.4f |\n", ft, fit.Slopes[i], corr))
		}
		sb.WriteString(fmt.Sprintf("\nIntercept: %.6f | Residual Std: %.6f\n\n", fit.Intercept, fit.ResidualStd))
	}

	// Event window
	if r.Factor != nil && r.Factor.Event != nil {
		ev := r.Factor.Event
		sb.WriteString("## Event Window\n\n")
		sb.WriteString("| Metric | Value |\n")
		sb.WriteString("|--------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Bars | %d |\n", ev.Bars))
		sb.WriteString(fmt.Sprintf("| CAR | %.4f%% |\n", ev.CAR*100))
		if !ev.Boundary.IsZero() {
			sb.WriteString(fmt.Sprintf("| Boundary | %s |\n", ev.Boundary.Format("15:04")))
			sb.WriteString(fmt.Sprintf("| CAR Before Boundary | %.4f%% |\n", ev.CARAtBoundary*100))
			sb.WriteString(fmt.Sprintf("| Unexplained Surge After | %.4f%% |\n", ev.UnexplainedSurge*100))
		}
		sb.WriteString(fmt.Sprintf("| CAR Std | %.6f |\n", ev.CARStd))
		sb.WriteString(fmt.Sprintf("| Z-Score | %s |\n", formatZ(ev.ZScore)))
		sb.WriteString("\n")
	}

	// Beta outcomes
	if len(r.Betas) > 0 {
		sb.WriteString("## Beta Analysis\n\n")
		sb.WriteString("| Ticker | Benchmark | Beta | Event Ret | Expected | Abnormal | Z | Significant | Note |\n")
		sb.WriteString("|--------|-----------|------|-----------|----------|----------|---|-------------|------|\n")
		for _, o := range r.Betas {
			switch {
			case o.Result != nil:
				res := o.Result
				sig := "no"
				if res.Significant {
					sig = "YES"
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %.4f | %.4f%% | %.4f%% | %.4f%% | %s | %s | |\n",
					res.Ticker, res.Benchmark, res.Beta,
					res.EventReturn*100, res.ExpectedReturn*100, res.AbnormalReturn*100,
					formatZ(res.ZScore), sig))
			case o.Skipped():
				sb.WriteString(fmt.Sprintf("| %s | | | | | | | | skipped: %s |\n", o.Ticker, o.SkipReason))
			default:
				sb.WriteString(fmt.Sprintf("| %s | | | | | | | | error: %v |\n", o.Ticker, o.Err))
			}
		}
		sb.WriteString("\n")
	}

	// Placebo distributions
	if len(r.Placebos) > 0 {
		sb.WriteString("## Placebo Distributions\n\n")
		sb.WriteString("| Statistic | Target | Reference | Days | Event Value | Percentile | Z |\n")
		sb.WriteString("|-----------|--------|-----------|------|-------------|------------|---|\n")
		for _, p := range r.Placebos {
			if p == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d | %.4f | %.1f | %s |\n",
				p.Statistic, p.Target, p.Reference, p.Distribution.Len(),
				p.EventValue, p.Percentile, formatZ(p.ZScore)))
		}
		sb.WriteString("\n")
	}

	// Sector rotation
	if len(r.Rotation) > 0 {
		sb.WriteString("## Sector Rotation\n\n")
		sb.WriteString("| Ticker | Benchmark | Session Ret | Benchmark Ret | Spread |\n")
		sb.WriteString("|--------|-----------|-------------|---------------|--------|\n")
		for _, s := range r.Rotation {
			sb.WriteString(fmt.Sprintf("| %s | %s | %.4f%% | %.4f%% | %.4f%% |\n",
				s.Ticker, s.Benchmark, s.TickerReturn*100, s.BenchmarkReturn*100, s.Spread*100))
		}
		sb.WriteString("\n")
	}

	// Historical reactions
	if len(r.Historical) > 0 {
		sb.WriteString("## Historical Reactions\n\n")
		sb.WriteString("| Date | Event | Defense | Shipping Basket | Signal |\n")
		sb.WriteString("|------|-------|---------|-----------------|--------|\n")
		for _, h := range r.Historical {
			if h.DataMissing {
				sb.WriteString(fmt.Sprintf("| %s | %s | n/a | n/a | data missing |\n",
					h.Event.Date.Format("2006-01-02"), h.Event.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %+.2f%% | %+.2f%% | %s |\n",
				h.Event.Date.Format("2006-01-02"), h.Event.Name,
				h.DefenseReturn*100, h.BasketReturn*100, h.Signal))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatZ keeps NaN z-scores readable in tables.
func formatZ(z float64) string {
	if math.IsNaN(z) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", z)
}
