package calculator

import (
	"errors"
	"math"

	"github.com/markcheno/go-talib"
)

// RollingSMA computes the trailing simple moving average at every index.
// Positions before the first full window are NaN.
func RollingSMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := undefinedSeries(len(values))
	if len(values) < period {
		return out, nil
	}
	sma := talib.Sma(values, period)
	copy(out[period-1:], sma[period-1:])
	return out, nil
}

// Defined reports whether a derived value exists at that position.
func Defined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
