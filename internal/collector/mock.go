package collector

import (
	"context"
	"time"

	"BreakoutScanner/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price     float64
	DailyData []model.DailyBar
	Err       error
	Calls     int
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchDailyRange returns DailyData filtered to the range, or generated
// weekday bars when DailyData is nil.
func (m *MockFetcher) FetchDailyRange(_ context.Context, _ string, start, end time.Time) ([]model.DailyBar, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyData == nil {
		return generateMockBars(m.Price, start, end), nil
	}
	bars := make([]model.DailyBar, 0, len(m.DailyData))
	for _, b := range m.DailyData {
		if !b.Date.Before(start) && b.Date.Before(end) {
			bars = append(bars, b)
		}
	}
	return bars, nil
}

// generateMockBars produces a gently rising series with a volume and price
// surge every 30 trading days.
func generateMockBars(basePrice float64, start, end time.Time) []model.DailyBar {
	if basePrice <= 0 {
		basePrice = 100
	}
	var bars []model.DailyBar
	p := basePrice
	n := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		vol := int64(1000000)
		step := 0.001
		if n > 0 && n%30 == 0 {
			vol *= 4
			step = 0.03
		}
		p *= 1 + step
		bars = append(bars, model.DailyBar{
			Date:   d,
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: vol,
		})
		n++
	}
	return bars
}
