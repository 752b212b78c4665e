package calculator

import (
	"BreakoutScanner/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summarize aggregates holding-period returns (in percent).
// WinRate counts strictly positive returns only.
func Summarize(returns []float64) model.Summary {
	if len(returns) == 0 {
		return model.Summary{}
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return model.Summary{
		Count:         len(returns),
		MeanReturnPct: stat.Mean(returns, nil),
		WinRate:       float64(wins) / float64(len(returns)),
		MaxReturnPct:  floats.Max(returns),
		MinReturnPct:  floats.Min(returns),
	}
}
