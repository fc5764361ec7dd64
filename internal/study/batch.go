package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/beta"
	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/provider"
	"github.com/aristotle-tek/caracas-signal/internal/returns"
)

// TickerOutcome is the typed per-ticker result of a beta batch: exactly
// one of Result, SkipReason, or Err is set. The batch aggregates outcomes
// explicitly instead of suppressing failures.
type TickerOutcome struct {
	Ticker     string
	Result     *domain.BetaAnalysisResult
	SkipReason string // soft skip: event date absent for this ticker
	Err        error  // hard failure: provider or fit error
}

// Skipped reports whether the ticker was soft-skipped.
func (o TickerOutcome) Skipped() bool {
	return o.SkipReason != ""
}

// BetaBatch runs the daily beta analyzer for each ticker against one
// benchmark. One bad ticker never aborts the batch: a missing event date
// becomes a skip, any other failure is recorded on the outcome and the
// loop continues.
func (r *Runner) BetaBatch(ctx context.Context, tickers []string, benchmark string, eventDate, historyStart time.Time) []TickerOutcome {
	analyzer := beta.New(r.Aligner.Location)
	if r.MinDailyBars > 0 {
		analyzer.MinSamples = r.MinDailyBars
	}
	if r.SignificanceZ > 0 {
		analyzer.SignificanceZ = r.SignificanceZ
	}

	end := eventDate.AddDate(0, 0, 1)

	benchRets, err := r.dailyReturns(ctx, benchmark, historyStart, end)
	if err != nil {
		// Without the benchmark nothing can be scored; fail every ticker
		// with the same cause so the caller sees it per outcome.
		out := make([]TickerOutcome, len(tickers))
		for i, t := range tickers {
			out[i] = TickerOutcome{Ticker: t, Err: fmt.Errorf("benchmark %s: %w", benchmark, err)}
		}
		return out
	}

	var out []TickerOutcome
	for _, ticker := range tickers {
		out = append(out, r.analyzeOne(ctx, analyzer, ticker, benchRets, eventDate, historyStart, end))
	}
	return out
}

func (r *Runner) analyzeOne(ctx context.Context, analyzer beta.Analyzer, ticker string, benchRets domain.ReturnSeries, eventDate, historyStart, end time.Time) TickerOutcome {
	targetRets, err := r.dailyReturns(ctx, ticker, historyStart, end)
	if err != nil {
		if errors.Is(err, provider.ErrDataUnavailable) {
			return TickerOutcome{Ticker: ticker, SkipReason: "no data for range"}
		}
		return TickerOutcome{Ticker: ticker, Err: err}
	}

	res, err := analyzer.Analyze(targetRets, benchRets, eventDate)
	if err != nil {
		if errors.Is(err, beta.ErrMissingEventDate) {
			return TickerOutcome{Ticker: ticker, SkipReason: "event date absent from index"}
		}
		return TickerOutcome{Ticker: ticker, Err: err}
	}
	return TickerOutcome{Ticker: ticker, Result: res}
}

// dailyReturns fetches and normalizes daily bars, then derives simple
// returns.
func (r *Runner) dailyReturns(ctx context.Context, ticker string, start, end time.Time) (domain.ReturnSeries, error) {
	raw, err := r.Provider.FetchOrLoad(ctx, ticker, start, end, domain.IntervalDaily)
	if err != nil {
		return domain.ReturnSeries{}, err
	}
	return returns.Simple(r.Aligner.NormalizeDaily(*raw)), nil
}
