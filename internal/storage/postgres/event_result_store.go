package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/idhash"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// EventResultStore implements storage.EventResultStore using PostgreSQL.
type EventResultStore struct {
	pool *Pool
}

// NewEventResultStore creates a new EventResultStore.
func NewEventResultStore(pool *Pool) *EventResultStore {
	return &EventResultStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventResultStore = (*EventResultStore)(nil)

// Insert adds a result. Returns ErrDuplicateKey if a result for the same
// (ticker, benchmark, event date) exists.
func (s *EventResultStore) Insert(ctx context.Context, r *domain.BetaAnalysisResult) error {
	if r == nil || r.Ticker == "" || r.Benchmark == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO event_results (
			result_id, ticker, benchmark, event_date, beta,
			event_return, benchmark_return, expected_return, abnormal_return,
			z_score, significant, sample_size
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		idhash.ComputeResultID(r.Ticker, r.Benchmark, r.EventDate),
		r.Ticker,
		r.Benchmark,
		r.EventDate,
		r.Beta,
		r.EventReturn,
		r.BenchmarkReturn,
		r.ExpectedReturn,
		r.AbnormalReturn,
		r.ZScore,
		r.Significant,
		r.SampleSize,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event result: %w", err)
	}
	return nil
}

// GetByID retrieves the result stored under a result ID. Returns
// ErrNotFound when absent.
func (s *EventResultStore) GetByID(ctx context.Context, resultID string) (*domain.BetaAnalysisResult, error) {
	if resultID == "" {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT ticker, benchmark, event_date, beta,
		       event_return, benchmark_return, expected_return, abnormal_return,
		       z_score, significant, sample_size
		FROM event_results
		WHERE result_id = $1
	`

	var r domain.BetaAnalysisResult
	err := s.pool.QueryRow(ctx, query, resultID).Scan(
		&r.Ticker,
		&r.Benchmark,
		&r.EventDate,
		&r.Beta,
		&r.EventReturn,
		&r.BenchmarkReturn,
		&r.ExpectedReturn,
		&r.AbnormalReturn,
		&r.ZScore,
		&r.Significant,
		&r.SampleSize,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event result by id: %w", err)
	}
	return &r, nil
}

// GetByTicker retrieves all results for a ticker, ordered by event date ASC.
func (s *EventResultStore) GetByTicker(ctx context.Context, ticker string) ([]*domain.BetaAnalysisResult, error) {
	query := `
		SELECT ticker, benchmark, event_date, beta,
		       event_return, benchmark_return, expected_return, abnormal_return,
		       z_score, significant, sample_size
		FROM event_results
		WHERE ticker = $1
		ORDER BY event_date ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker)
	if err != nil {
		return nil, fmt.Errorf("get results by ticker: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// GetByEvent retrieves all results for one event date, ordered by ticker ASC.
func (s *EventResultStore) GetByEvent(ctx context.Context, eventDate time.Time) ([]*domain.BetaAnalysisResult, error) {
	query := `
		SELECT ticker, benchmark, event_date, beta,
		       event_return, benchmark_return, expected_return, abnormal_return,
		       z_score, significant, sample_size
		FROM event_results
		WHERE event_date = $1
		ORDER BY ticker ASC
	`

	rows, err := s.pool.Query(ctx, query, eventDate)
	if err != nil {
		return nil, fmt.Errorf("get results by event: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows rowScanner) ([]*domain.BetaAnalysisResult, error) {
	var result []*domain.BetaAnalysisResult
	for rows.Next() {
		var r domain.BetaAnalysisResult
		err := rows.Scan(
			&r.Ticker,
			&r.Benchmark,
			&r.EventDate,
			&r.Beta,
			&r.EventReturn,
			&r.BenchmarkReturn,
			&r.ExpectedReturn,
			&r.AbnormalReturn,
			&r.ZScore,
			&r.Significant,
			&r.SampleSize,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event result: %w", err)
		}
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event results: %w", err)
	}
	return result, nil
}
