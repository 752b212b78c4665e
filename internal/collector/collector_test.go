package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"BreakoutScanner/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	jan1  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1  = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	nolog = zerolog.Nop()
)

func sampleBars() []model.DailyBar {
	return []model.DailyBar{
		{Date: jan1.AddDate(0, 0, 1), Close: 10, Volume: 100},
		{Date: jan1.AddDate(0, 0, 2), Close: 11, Volume: 200},
		{Date: feb1, Close: 12, Volume: 300},
	}
}

func TestCollector_Collect(t *testing.T) {
	col := NewCollector(&MockFetcher{DailyData: sampleBars()}, nolog)
	series, err := col.Collect(context.Background(), " aapl ", jan1, feb1)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", series.Symbol)
	assert.Equal(t, "mock", series.Source)
	assert.Len(t, series.Bars, 2, "end is exclusive")
}

func TestCollector_NoData(t *testing.T) {
	col := NewCollector(&MockFetcher{DailyData: []model.DailyBar{}}, nolog)
	series, err := col.Collect(context.Background(), "AAPL", jan1, feb1)
	require.ErrorIs(t, err, ErrNoData)
	require.NotNil(t, series)
	assert.NotNil(t, series.Bars)
	assert.Empty(t, series.Bars)
}

func TestCollector_Errors(t *testing.T) {
	boom := errors.New("boom")
	col := NewCollector(&MockFetcher{Err: boom}, nolog)

	_, err := col.Collect(context.Background(), "AAPL", jan1, feb1)
	assert.ErrorIs(t, err, boom)

	_, err = col.Collect(context.Background(), "", jan1, feb1)
	assert.Error(t, err)

	_, err = col.Collect(context.Background(), "AAPL", feb1, jan1)
	assert.Error(t, err)
}

func TestMockFetcher_GeneratedBarsSkipWeekends(t *testing.T) {
	m := &MockFetcher{Price: 50}
	bars, err := m.FetchDailyRange(context.Background(), "X", jan1, feb1)
	require.NoError(t, err)
	require.NotEmpty(t, bars)
	for i, b := range bars {
		assert.NotEqual(t, time.Saturday, b.Date.Weekday())
		assert.NotEqual(t, time.Sunday, b.Date.Weekday())
		if i > 0 {
			assert.True(t, b.Date.After(bars[i-1].Date))
		}
	}
}

const chartJSON = `{"chart":{"result":[{"timestamp":[%d,%d,%d],
"indicators":{"quote":[{"open":[1,null,3],"high":[1,null,3],"low":[1,null,3],
"close":[10.5,null,11.25],"volume":[1000,null,2500]}]}}],"error":null}}`

func TestYahooFetcher_FetchDailyRange(t *testing.T) {
	d1 := time.Date(2024, 3, 4, 14, 30, 0, 0, time.UTC)
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		fmt.Fprintf(w, chartJSON, d1.AddDate(0, 0, 1).Unix(), d1.AddDate(0, 0, 2).Unix(), d1.Unix())
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyRange(context.Background(), "spx", jan1, feb1)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/^GSPC", gotPath)
	assert.Contains(t, gotQuery, fmt.Sprintf("period1=%d", jan1.Unix()))
	assert.Contains(t, gotQuery, "interval=1d")

	require.Len(t, bars, 2, "null bar skipped")
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 11.25, bars[0].Close)
	assert.Equal(t, int64(2500), bars[0].Volume)
	assert.Equal(t, 10.5, bars[1].Close)
}

func TestYahooFetcher_DatesFollowExchangeTimezone(t *testing.T) {
	// Tokyo sessions are stamped at local midnight, 15:00 UTC the day before.
	tokyo := time.Date(2024, 3, 3, 15, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{"meta":{"exchangeTimezoneName":"Asia/Tokyo","gmtoffset":32400},
"timestamp":[%d,%d],"indicators":{"quote":[{"open":[1,2],"high":[1,2],"low":[1,2],
"close":[10,11],"volume":[100,200]}]}}],"error":null}}`, tokyo.Unix(), tokyo.AddDate(0, 0, 1).Unix())
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyRange(context.Background(), "7203.T", jan1, feb1)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), bars[1].Date)
}

func TestExchangeLocation_Fallbacks(t *testing.T) {
	assert.Equal(t, "America/New_York", exchangeLocation("America/New_York", -14400).String())
	_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, exchangeLocation("Not/AZone", 3600)).Zone()
	assert.Equal(t, 3600, off)
	assert.Equal(t, time.UTC, exchangeLocation("", 0))
}

func TestYahooFetcher_NotFoundIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	bars, err := f.FetchDailyRange(context.Background(), "NOPE", jan1, feb1)
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestYahooFetcher_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyRange(context.Background(), "AAPL", jan1, feb1)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "502"))
}

func TestBarCache_RoundTripAndTTL(t *testing.T) {
	cache, err := NewBarCache(filepath.Join(t.TempDir(), "cache", "bars.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close()

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	ctx := context.Background()
	_, ok, err := cache.Get(ctx, "AAPL", jan1, feb1)
	require.NoError(t, err)
	assert.False(t, ok)

	bars := sampleBars()[:2]
	require.NoError(t, cache.Put(ctx, "AAPL", jan1, feb1, bars))

	got, ok, err := cache.Get(ctx, "AAPL", jan1, feb1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, bars, got)

	now = now.Add(2 * time.Hour)
	_, ok, err = cache.Get(ctx, "AAPL", jan1, feb1)
	require.NoError(t, err)
	assert.False(t, ok, "expired range is a miss")
}

func TestBarCache_EmptyRangeIsCached(t *testing.T) {
	cache, err := NewBarCache(filepath.Join(t.TempDir(), "bars.db"), 0)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, "NOPE", jan1, feb1, nil))
	got, ok, err := cache.Get(ctx, "NOPE", jan1, feb1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestCachedFetcher(t *testing.T) {
	cache, err := NewBarCache(filepath.Join(t.TempDir(), "bars.db"), 0)
	require.NoError(t, err)
	defer cache.Close()

	mock := &MockFetcher{DailyData: sampleBars()}
	cf := NewCachedFetcher(mock, cache, nolog)
	assert.Equal(t, "mock+cache", cf.Name())

	ctx := context.Background()
	first, err := cf.FetchDailyRange(ctx, "AAPL", jan1, feb1)
	require.NoError(t, err)
	second, err := cf.FetchDailyRange(ctx, "AAPL", jan1, feb1)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, mock.Calls)
}
