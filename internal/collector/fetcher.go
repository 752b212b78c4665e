package collector

import (
	"context"
	"time"

	"BreakoutScanner/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
// The range is [start, end): end is exclusive.
type Fetcher interface {
	FetchDailyRange(ctx context.Context, symbol string, start, end time.Time) ([]model.DailyBar, error)
	Name() string
}
