package collector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"BreakoutScanner/internal/model"

	"github.com/rs/zerolog"
)

// ErrNoData signals that the provider has no bars for the requested range.
var ErrNoData = errors.New("no data for requested range")

// Collector fetches the daily series for one symbol and date range.
type Collector struct {
	Fetcher Fetcher
	Log     zerolog.Logger
	now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, log zerolog.Logger) *Collector {
	return &Collector{
		Fetcher: fetcher,
		Log:     log.With().Str("component", "collector").Str("source", fetcher.Name()).Logger(),
		now:     time.Now,
	}
}

// Collect fetches daily bars in [start, end). Zero bars is reported as
// ErrNoData together with a series carrying no bars, never a nil slice.
func (c *Collector) Collect(ctx context.Context, symbol string, start, end time.Time) (*model.PriceSeries, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New("symbol is required")
	}
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s must be before end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}

	bars, err := c.Fetcher.FetchDailyRange(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetch daily bars: %w", err)
	}
	if bars == nil {
		bars = []model.DailyBar{}
	}

	series := &model.PriceSeries{
		Symbol:    symbol,
		Start:     start,
		End:       end,
		Bars:      bars,
		Source:    c.Fetcher.Name(),
		FetchedAt: c.now(),
	}
	if len(bars) == 0 {
		c.Log.Info().Str("symbol", symbol).Msg("provider returned no bars")
		return series, ErrNoData
	}
	c.Log.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("series collected")
	return series, nil
}
