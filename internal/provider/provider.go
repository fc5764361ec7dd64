// Package provider acquires price bars and caches them in a bar store.
// Everything network- and cache-shaped lives here; the statistical core
// only ever sees fully materialized PriceSeries. Retry policy belongs to
// this layer, never to the core.
package provider

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// ErrDataUnavailable is returned when no rows exist for the requested
// ticker and range, from either the cache or the remote source.
var ErrDataUnavailable = errors.New("no data available for requested range")

// Provider returns a well-shaped price series for one instrument. The
// series is raw (exchange timezone, unfiltered); alignment is the
// caller's job.
type Provider interface {
	FetchOrLoad(ctx context.Context, ticker string, start, end time.Time, interval string) (*domain.PriceSeries, error)
}

// SafeTicker sanitizes a ticker for use as a storage key or URL path
// segment: futures symbols like CL=F become CLF.
func SafeTicker(ticker string) string {
	return strings.ReplaceAll(ticker, "=", "")
}
