package scanner

import (
	"context"
	"testing"
	"time"

	"BreakoutScanner/internal/analyzer"
	"BreakoutScanner/internal/collector"
	"BreakoutScanner/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	start  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end    = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	params = analyzer.Params{VolumeThresholdPct: 200, PriceChangeThresholdPct: 2, HoldingPeriod: 10}
)

func newScanner(f collector.Fetcher) *Scanner {
	return New(collector.NewCollector(f, zerolog.Nop()), zerolog.Nop())
}

func TestRun_GeneratedSurges(t *testing.T) {
	s := newScanner(&collector.MockFetcher{Price: 100})
	rep, err := s.Run(context.Background(), Request{Symbol: "demo", Start: start, End: end, Params: params})
	require.NoError(t, err)

	assert.Equal(t, "DEMO", rep.Request.Symbol)
	assert.Equal(t, model.OutcomeBreakouts, rep.Outcome())
	require.NotEmpty(t, rep.Result.Events)
	for _, ev := range rep.Result.Events {
		assert.Equal(t, int64(4000000), ev.Volume)
	}
	assert.Contains(t, rep.Text, "Total Breakouts")
}

func TestRun_NoData(t *testing.T) {
	s := newScanner(&collector.MockFetcher{DailyData: []model.DailyBar{}})
	rep, err := s.Run(context.Background(), Request{Symbol: "AAPL", Start: start, End: end, Params: params})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeEmptyInput, rep.Outcome())
	assert.Equal(t, "No data found for AAPL between 2024-01-01 and 2024-07-01", rep.Text)
}

func TestRun_NoBreakouts(t *testing.T) {
	var bars []model.DailyBar
	for i := 0; i < 40; i++ {
		bars = append(bars, model.DailyBar{Date: start.AddDate(0, 0, i+1), Close: 100, Volume: 1000})
	}
	s := newScanner(&collector.MockFetcher{DailyData: bars})
	rep, err := s.Run(context.Background(), Request{Symbol: "AAPL", Start: start, End: end, Params: params})
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeNoBreakouts, rep.Outcome())
	assert.Equal(t, "No breakout conditions met for AAPL", rep.Text)
}

func TestRun_InvalidSeriesFails(t *testing.T) {
	bars := []model.DailyBar{
		{Date: start.AddDate(0, 0, 2), Close: 100, Volume: 1},
		{Date: start.AddDate(0, 0, 1), Close: 100, Volume: 1},
	}
	s := newScanner(&collector.MockFetcher{DailyData: bars})
	_, err := s.Run(context.Background(), Request{Symbol: "AAPL", Start: start, End: end, Params: params})
	assert.ErrorIs(t, err, analyzer.ErrInvalidSeries)
}
