package clickhouse

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
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := testBars(5)
	require.NoError(t, store.InsertBulk(ctx, "XLE", domain.Interval5Min, bars))

	// Inclusive range, ascending order.
	got, err := store.GetRange(ctx, "XLE", domain.Interval5Min, bars[1].Timestamp, bars[3].Timestamp)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.True(t, got[0].Timestamp.Equal(bars[1].Timestamp))
	assert.Equal(t, bars[1].Close, got[0].Close)
	assert.Equal(t, bars[1].Volume, got[0].Volume)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].Timestamp.Before(got[i].Timestamp))
	}
}

func TestBarStore_DuplicateAgainstExistingRows(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := testBars(3)
	require.NoError(t, store.InsertBulk(ctx, "XLE", domain.Interval5Min, bars[:2]))

	err := store.InsertBulk(ctx, "XLE", domain.Interval5Min, bars[1:])
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_IntraBatchDuplicate(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	bars := testBars(2)
	bars[1].Timestamp = bars[0].Timestamp

	err := store.InsertBulk(ctx, "XLE", domain.Interval5Min, bars)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestBarStore_EmptyRange(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	got, err := store.GetRange(context.Background(), "NONE", domain.Interval5Min,
		time.Now().Add(-24*time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBarStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewBarStore(conn)
	ctx := context.Background()

	err := store.InsertBulk(ctx, "", domain.Interval5Min, testBars(1))
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	bad := testBars(1)
	bad[0].Volume = -5
	err = store.InsertBulk(ctx, "XLE", domain.Interval5Min, bad)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
