package storage

import (
	"context"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
)

// BarStore provides access to cached price bars. Bars are keyed by
// (ticker, interval, timestamp); the cache is the provider's concern, the
// statistical core never touches it.
type BarStore interface {
	// InsertBulk adds bars for one (ticker, interval). Fails the entire
	// batch with ErrDuplicateKey if any (ticker, interval, timestamp)
	// already exists.
	InsertBulk(ctx context.Context, ticker, interval string, bars []domain.PriceBar) error

	// GetRange retrieves bars within [start, end] (inclusive), ordered by
	// timestamp ASC. An empty result is a valid answer, not an error.
	GetRange(ctx context.Context, ticker, interval string, start, end time.Time) ([]domain.PriceBar, error)
}

// EventResultStore persists per-ticker beta analysis results so a batch
// can be re-read for reporting without recomputation.
type EventResultStore interface {
	// Insert adds a result. Returns ErrDuplicateKey if a result for the
	// same (ticker, benchmark, event date) exists.
	Insert(ctx context.Context, r *domain.BetaAnalysisResult) error

	// GetByID retrieves the result stored under a deterministic result ID
	// (idhash.ComputeResultID). Returns ErrNotFound when absent.
	GetByID(ctx context.Context, resultID string) (*domain.BetaAnalysisResult, error)

	// GetByTicker retrieves all stored results for a ticker, ordered by
	// event date ASC.
	GetByTicker(ctx context.Context, ticker string) ([]*domain.BetaAnalysisResult, error)

	// GetByEvent retrieves all results for one event date, ordered by
	// ticker ASC.
	GetByEvent(ctx context.Context, eventDate time.Time) ([]*domain.BetaAnalysisResult, error)
}
