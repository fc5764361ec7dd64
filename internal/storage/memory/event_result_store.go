package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/idhash"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// EventResultStore is an in-memory implementation of
// storage.EventResultStore.
type EventResultStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BetaAnalysisResult // keyed by result ID
}

// NewEventResultStore creates a new in-memory event result store.
func NewEventResultStore() *EventResultStore {
	return &EventResultStore{
		data: make(map[string]*domain.BetaAnalysisResult),
	}
}

// Compile-time interface check.
var _ storage.EventResultStore = (*EventResultStore)(nil)

// Insert adds a result. Returns ErrDuplicateKey if a result for the same
// (ticker, benchmark, event date) exists.
func (s *EventResultStore) Insert(_ context.Context, r *domain.BetaAnalysisResult) error {
	if r == nil || r.Ticker == "" || r.Benchmark == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := idhash.ComputeResultID(r.Ticker, r.Benchmark, r.EventDate)
	if _, exists := s.data[id]; exists {
		return storage.ErrDuplicateKey
	}
	resultCopy := *r
	s.data[id] = &resultCopy
	return nil
}

// GetByID retrieves the result stored under a result ID. Returns
// ErrNotFound when absent.
func (s *EventResultStore) GetByID(_ context.Context, resultID string) (*domain.BetaAnalysisResult, error) {
	if resultID == "" {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[resultID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	resultCopy := *r
	return &resultCopy, nil
}

// GetByTicker retrieves all results for a ticker, ordered by event date ASC.
func (s *EventResultStore) GetByTicker(_ context.Context, ticker string) ([]*domain.BetaAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BetaAnalysisResult
	for _, r := range s.data {
		if r.Ticker == ticker {
			resultCopy := *r
			result = append(result, &resultCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].EventDate.Before(result[j].EventDate)
	})
	return result, nil
}

// GetByEvent retrieves all results for one event date, ordered by ticker ASC.
func (s *EventResultStore) GetByEvent(_ context.Context, eventDate time.Time) ([]*domain.BetaAnalysisResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := eventDate.UTC().Date()
	var result []*domain.BetaAnalysisResult
	for _, r := range s.data {
		ry, rm, rd := r.EventDate.UTC().Date()
		if ry == y && rm == m && rd == d {
			resultCopy := *r
			result = append(result, &resultCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Ticker < result[j].Ticker
	})
	return result, nil
}
