package analyzer

import (
	"fmt"
	"math"
)

const (
	DefaultMAWindow  = 20
	DefaultReturnLag = 1
)

// Params are the breakout thresholds. Percentages are expressed as
// percent values: 200 means 200% above the average.
type Params struct {
	VolumeThresholdPct      float64
	PriceChangeThresholdPct float64
	HoldingPeriod           int // trading-day index steps
	MAWindow                int // 0 means DefaultMAWindow
	ReturnLag               int // 0 means DefaultReturnLag
}

func (p Params) withDefaults() Params {
	if p.MAWindow == 0 {
		p.MAWindow = DefaultMAWindow
	}
	if p.ReturnLag == 0 {
		p.ReturnLag = DefaultReturnLag
	}
	return p
}

// Validate checks the type-level constraints only. Presentation bounds
// such as a 50% minimum volume threshold live in config.
func (p Params) Validate() error {
	p = p.withDefaults()
	switch {
	case math.IsNaN(p.VolumeThresholdPct) || math.IsInf(p.VolumeThresholdPct, 0):
		return fmt.Errorf("%w: volume threshold must be finite", ErrInvalidParams)
	case p.VolumeThresholdPct < 0:
		return fmt.Errorf("%w: volume threshold %.2f must be >= 0", ErrInvalidParams, p.VolumeThresholdPct)
	case math.IsNaN(p.PriceChangeThresholdPct) || math.IsInf(p.PriceChangeThresholdPct, 0):
		return fmt.Errorf("%w: price change threshold must be finite", ErrInvalidParams)
	case p.HoldingPeriod < 1:
		return fmt.Errorf("%w: holding period %d must be >= 1", ErrInvalidParams, p.HoldingPeriod)
	case p.MAWindow < 1:
		return fmt.Errorf("%w: moving average window %d must be >= 1", ErrInvalidParams, p.MAWindow)
	case p.ReturnLag < 1:
		return fmt.Errorf("%w: return lag %d must be >= 1", ErrInvalidParams, p.ReturnLag)
	}
	return nil
}
