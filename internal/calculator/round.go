package calculator

import "math"

// Round2 rounds half away from zero to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// RoundInt rounds to the nearest integer.
func RoundInt(x float64) int64 {
	return int64(math.Round(x))
}
