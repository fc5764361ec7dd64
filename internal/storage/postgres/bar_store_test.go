package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristotle-tek/caracas-signal/internal/domain"
	"github.com/aristotle-tek/caracas-signal/internal/storage"
)

func testBars(n int) []domain.PriceBar {
	base := time.Date(2026, 1, 2, 14, 30, 0, 0, time.UTC)
	out := make([]domain.PriceBar, n)
	for i := range out {
		out[i] = domain.PriceBar{
			Timestamp: base.Add(time.Duration(i) * 5 * time.Minute),
			Open:      99.5 + float64(i),
			High:      100.5 + float64(i),
			Low:       99.0 + float64(i),
			Close:     100.0 + float64(i),
			Volume:    int64(120000 + 1000*i),
		}
	}
	return out
}

func TestBarStore_InsertBulkAndGetRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(pool)
	ctx := context.Background()

	bars := testBars(5)
	err := store.InsertBulk(ctx, "ITA", domain.IntervalDaily, bars)
	require.NoError(t, err)

	// Inclusive range, ascending order.
	got, err := store.GetRange(ctx, "ITA", domain.IntervalDaily, bars[1].Timestamp, bars[3].Timestamp)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].Timestamp.Equal(bars[1].Timestamp))
	assert.Equal(t, bars[1].Open, got[0].Open)
	assert.Equal(t, bars[1].High, got[0].High)
	assert.Equal(t, bars[1].Low, got[0].Low)
	assert.Equal(t, bars[1].Close, got[0].Close)
	assert.Equal(t, bars[1].Volume, got[0].Volume)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp.Before(got[i].Timestamp))
	}
}

func TestBarStore_DuplicateKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(pool)
	ctx := context.Background()

	bars := testBars(3)
	require.NoError(t, store.InsertBulk(ctx, "ITA", domain.IntervalDaily, bars[:2]))

	// Overlapping batch rolls back entirely.
	err := store.InsertBulk(ctx, "ITA", domain.IntervalDaily, bars[1:])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	got, err := store.GetRange(ctx, "ITA", domain.IntervalDaily, bars[0].Timestamp, bars[2].Timestamp)
	require.NoError(t, err)
	assert.Len(t, got, 2, "failed batch must not be partially applied")
}

func TestBarStore_IntervalsAreSeparateKeys(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(pool)
	ctx := context.Background()

	bars := testBars(2)
	require.NoError(t, store.InsertBulk(ctx, "ITA", domain.IntervalDaily, bars))
	require.NoError(t, store.InsertBulk(ctx, "ITA", domain.Interval5Min, bars))

	got, err := store.GetRange(ctx, "ITA", domain.Interval5Min, bars[0].Timestamp, bars[1].Timestamp)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestBarStore_EmptyRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(pool)
	got, err := store.GetRange(context.Background(), "NONE", domain.IntervalDaily,
		time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBarStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(pool)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "", domain.IntervalDaily, testBars(1))
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	bad := testBars(1)
	bad[0].Close = -1
	err = store.InsertBulk(ctx, "ITA", domain.IntervalDaily, bad)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
