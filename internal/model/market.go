package model

import "time"

// DailyBar represents a single trading day of the input series.
type DailyBar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PriceSeries holds raw daily bars for one symbol and requested range.
type PriceSeries struct {
	Symbol    string
	Start     time.Time
	End       time.Time
	Bars      []DailyBar
	Source    string
	FetchedAt time.Time
}

// Closes extracts the close prices of bars in order.
func Closes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volumes of bars as float64 in order.
func Volumes(bars []DailyBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}
