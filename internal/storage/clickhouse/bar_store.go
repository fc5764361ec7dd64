package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse. Intraday bars
// are high-volume append-only timeseries, which is what MergeTree is for;
// daily bars can live in either backend.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

// InsertBulk adds bars for one (ticker, interval). Fails the entire batch
// on duplicate (ticker, interval, timestamp). MergeTree does not enforce
// uniqueness at insert time, so duplicates are checked explicitly before
// the batch is sent.
func (s *BarStore) InsertBulk(ctx context.Context, ticker, interval string, bars []domain.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	if ticker == "" || interval == "" {
		return storage.ErrInvalidInput
	}

	// Check for intra-batch duplicates
	seen := make(map[int64]struct{}, len(bars))
	for _, b := range bars {
		if b.Close <= 0 || b.Volume < 0 {
			return storage.ErrInvalidInput
		}
		key := b.Timestamp.UnixNano()
		if _, exists := seen[key]; exists {
			return storage.ErrDuplicateKey
		}
		seen[key] = struct{}{}
	}

	// Check for duplicates against existing rows
	for _, b := range bars {
		exists, err := s.exists(ctx, ticker, interval, b.Timestamp)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO intraday_bars (
			ticker, bar_interval, ts, open, high, low, close, volume
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			ticker, interval, b.Timestamp,
			b.Open, b.High, b.Low, b.Close, uint64(b.Volume),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetRange retrieves bars within [start, end] (inclusive), ordered by
// timestamp ASC.
func (s *BarStore) GetRange(ctx context.Context, ticker, interval string, start, end time.Time) ([]domain.PriceBar, error) {
	query := `
		SELECT ts, open, high, low, close, volume
		FROM intraday_bars
		WHERE ticker = ? AND bar_interval = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := s.conn.Query(ctx, query, ticker, interval, start, end)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	defer rows.Close()

	var result []domain.PriceBar
	for rows.Next() {
		var b domain.PriceBar
		var volume uint64
		if err := rows.Scan(&b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Volume = int64(volume)
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars: %w", err)
	}
	return result, nil
}

// exists checks whether a bar with the given key is already stored.
func (s *BarStore) exists(ctx context.Context, ticker, interval string, ts time.Time) (bool, error) {
	query := `
		SELECT count() FROM intraday_bars
		WHERE ticker = ? AND bar_interval = ? AND ts = ?
	`
	var count uint64
	if err := s.conn.QueryRow(ctx, query, ticker, interval, ts).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
