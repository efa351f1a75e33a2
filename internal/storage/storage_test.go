package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/02s02s/volatility-alerts-bot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, maxRecords int) *Storage {
	t.Helper()
	s, err := New(maxRecords, filepath.Join(t.TempDir(), "alerts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testRecord(symbol string, sentAt time.Time) models.AlertRecord {
	return models.AlertRecord{
		Symbol:        symbol,
		Category:      models.CategoryBigMove,
		Direction:     models.DirectionBullish,
		Price:         decimal.NewFromFloat(64250.5),
		Change5m:      decimal.NewFromFloat(1.2),
		Change15m:     decimal.NewFromFloat(6.3),
		Volatility15m: decimal.NewFromFloat(0.8),
		Volume15m:     decimal.NewFromInt(120_000),
		VolumeSpike:   decimal.NewFromFloat(35.5),
		SentAt:        sentAt,
	}
}

func TestRecordAndReadBack(t *testing.T) {
	s := newTestStorage(t, 100)

	sentAt := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.RecordAlert(testRecord("BTCUSDT", sentAt)))

	records, err := s.RecentAlerts(10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	got := records[0]
	assert.NotEmpty(t, got.ID) // assigned on insert
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, models.CategoryBigMove, got.Category)
	assert.Equal(t, models.DirectionBullish, got.Direction)
	assert.True(t, got.Price.Equal(decimal.NewFromFloat(64250.5)))
	assert.True(t, got.Change15m.Equal(decimal.NewFromFloat(6.3)))
	assert.True(t, got.SentAt.Equal(sentAt))
}

func TestRecentAlertsNewestFirst(t *testing.T) {
	s := newTestStorage(t, 100)

	base := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	for i, symbol := range []string{"AAAUSDT", "BBBUSDT", "CCCUSDT"} {
		require.NoError(t, s.RecordAlert(testRecord(symbol, base.Add(time.Duration(i)*time.Minute))))
	}

	records, err := s.RecentAlerts(2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "CCCUSDT", records[0].Symbol)
	assert.Equal(t, "BBBUSDT", records[1].Symbol)
}

func TestRecordCapPrunesOldest(t *testing.T) {
	s := newTestStorage(t, 3)

	base := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordAlert(testRecord("BTCUSDT", base.Add(time.Duration(i)*time.Minute))))
	}

	n, err := s.CountAlerts()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := s.RecentAlerts(10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	// The two oldest records were pruned.
	assert.True(t, records[2].SentAt.Equal(base.Add(2*time.Minute)))
}
