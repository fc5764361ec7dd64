package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// DefaultCoverageSlack is how far a requested range edge may sit from the
// nearest cached bar before the cache is treated as partial. Trading bars
// never land on weekends, holidays, or outside session hours, so the
// first bar of a complete answer can trail the requested start by days.
const DefaultCoverageSlack = 96 * time.Hour

// CachedProvider serves series from a bar store, fetching from the chart
// client and persisting on a cache miss. Storage keys use the sanitized
// ticker; the chart API sees the raw one.
type CachedProvider struct {
	Store  storage.BarStore
	Client *ChartClient

	// ForceRefresh bypasses the cache and overwrites nothing: freshly
	// fetched bars already present in the store are simply not
	// re-inserted.
	ForceRefresh bool

	// CoverageSlack overrides DefaultCoverageSlack when positive.
	CoverageSlack time.Duration
}

// NewCachedProvider creates a provider over the given store and client.
func NewCachedProvider(store storage.BarStore, client *ChartClient) *CachedProvider {
	return &CachedProvider{Store: store, Client: client}
}

// Compile-time interface check.
var _ Provider = (*CachedProvider)(nil)

// FetchOrLoad returns cached bars when they span the requested
// [start, end] range, otherwise fetches, persists, and returns the fetched
// series. A cache holding only part of the range, say an earlier
// event-day-only fetch, is never served as the answer for a wider window.
// Returns ErrDataUnavailable when neither source has rows.
func (p *CachedProvider) FetchOrLoad(ctx context.Context, ticker string, start, end time.Time, interval string) (*domain.PriceSeries, error) {
	key := SafeTicker(ticker)

	if !p.ForceRefresh {
		bars, err := p.Store.GetRange(ctx, key, interval, start, end)
		if err != nil {
			return nil, fmt.Errorf("load cached bars for %s: %w", ticker, err)
		}
		if p.covers(bars, start, end) {
			return &domain.PriceSeries{Ticker: ticker, Interval: interval, Bars: bars}, nil
		}
	}

	series, err := p.Client.Fetch(ctx, ticker, start, end, interval)
	if err != nil {
		return nil, err
	}

	if err := p.Store.InsertBulk(ctx, key, interval, series.Bars); err != nil {
		// A concurrent or partial earlier fill is fine; the fetched
		// series is still the answer.
		if !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("cache bars for %s: %w", ticker, err)
		}
	}

	return series, nil
}

// covers reports whether cached bars span the requested range: both range
// edges must sit within the coverage slack of the cached extremes.
func (p *CachedProvider) covers(bars []domain.PriceBar, start, end time.Time) bool {
	if len(bars) == 0 {
		return false
	}
	slack := p.CoverageSlack
	if slack <= 0 {
		slack = DefaultCoverageSlack
	}
	first := bars[0].Timestamp
	last := bars[len(bars)-1].Timestamp
	return !first.After(start.Add(slack)) && !last.Before(end.Add(-slack))
}
