package calculator

import "errors"

// PctChange returns (v[i] - v[i-lag]) / v[i-lag] for every index.
// The first lag positions, and any position whose base is zero, are NaN.
func PctChange(values []float64, lag int) ([]float64, error) {
	if lag <= 0 {
		return nil, errors.New("lag must be positive")
	}
	out := undefinedSeries(len(values))
	for i := lag; i < len(values); i++ {
		base := values[i-lag]
		if base == 0 {
			continue
		}
		out[i] = (values[i] - base) / base
	}
	return out, nil
}

// VolumeRatio returns how far volume sits above its average, in percent:
// (volume / avg - 1) * 100. Undefined where the average is undefined or zero.
func VolumeRatio(volumes, avg []float64) ([]float64, error) {
	if len(volumes) != len(avg) {
		return nil, errors.New("volume and average series differ in length")
	}
	out := undefinedSeries(len(volumes))
	for i, v := range volumes {
		if !Defined(avg[i]) || avg[i] == 0 {
			continue
		}
		out[i] = (v/avg[i] - 1) * 100
	}
	return out, nil
}
