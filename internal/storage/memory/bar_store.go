package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[string]domain.PriceBar // keyed by (ticker, interval, timestamp)
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{
		data: make(map[string]domain.PriceBar),
	}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// barKey generates a unique key for a bar.
func barKey(ticker, interval string, ts time.Time) string {
	return fmt.Sprintf("%s|%s|%d", ticker, interval, ts.UnixNano())
}

// InsertBulk adds bars for one (ticker, interval). Fails the entire batch
// on duplicate.
func (s *BarStore) InsertBulk(_ context.Context, ticker, interval string, bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	if ticker == "" || interval == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: check duplicates, existing and intra-batch.
	batchKeys := make(map[string]struct{}, len(bars))
	for _, b := range bars {
		if b.Close <= 0 || b.Volume < 0 {
			return storage.ErrInvalidInput
		}
		key := barKey(ticker, interval, b.Timestamp)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all.
	for _, b := range bars {
		s.data[barKey(ticker, interval, b.Timestamp)] = b
	}
	return nil
}

// GetRange retrieves bars within [start, end] inclusive, ordered by
// timestamp ASC.
func (s *BarStore) GetRange(_ context.Context, ticker, interval string, start, end time.Time) ([]domain.PriceBar, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := fmt.Sprintf("%s|%s|", ticker, interval)
	var result []domain.PriceBar
	for key, b := range s.data {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		result = append(result, b)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
