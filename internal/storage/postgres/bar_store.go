package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// BarStore implements storage.BarStore using PostgreSQL. Daily bars live
// here; high-volume intraday bars go to the ClickHouse store.
type BarStore struct {
	pool *Pool
}

// NewBarStore creates a new BarStore.
func NewBarStore(pool *Pool) *BarStore {
	return &BarStore{pool: pool}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds bars for one (ticker, interval) in a single transaction.
// Fails the entire batch with ErrDuplicateKey on any existing
// (ticker, interval, timestamp).
func (s *BarStore) InsertBulk(ctx context.Context, ticker, interval string, bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	if ticker == "" || interval == "" {
		return storage.ErrInvalidInput
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert bars: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_bars (
			ticker, bar_interval, ts, open, high, low, close, volume
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, b := range bars {
		if b.Close <= 0 || b.Volume < 0 {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			ticker,
			interval,
			b.Timestamp,
			b.Open,
			b.High,
			b.Low,
			b.Close,
			b.Volume,
		)
		if err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("insert bar: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert bars: %w", err)
	}
	return nil
}

// GetRange retrieves bars within [start, end] (inclusive), ordered by
// timestamp ASC.
func (s *BarStore) GetRange(ctx context.Context, ticker, interval string, start, end time.Time) ([]domain.PriceBar, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM price_bars
		WHERE ticker = $1 AND bar_interval = $2 AND ts >= $3 AND ts <= $4
		ORDER BY ts ASC
	`

	rows, err := s.pool.Query(ctx, query, ticker, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	var result []domain.PriceBar
	for rows.Next() {
		var b domain.PriceBar
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return result, nil
}
