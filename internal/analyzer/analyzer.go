package analyzer

import (
	"context"
	"fmt"
	"math"

	"BreakoutScanner/internal/calculator"
	"BreakoutScanner/internal/model"
)

// Analyze flags volume + price breakout days in bars and measures the
// forward return of each over p.HoldingPeriod trading days.
//
// Besides hard failures it returns ErrEmptyInput or ErrNoBreakouts together
// with a result carrying the matching Outcome. It holds no state and is safe
// for concurrent use.
func Analyze(ctx context.Context, bars []model.DailyBar, p Params) (*model.AnalysisResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	result := &model.AnalysisResult{HoldingPeriod: p.HoldingPeriod}
	if len(bars) == 0 {
		result.Outcome = model.OutcomeEmptyInput
		return result, ErrEmptyInput
	}
	if err := ValidateSeries(bars); err != nil {
		return nil, err
	}

	derived, err := Derive(bars, p)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	candidates := detect(bars, derived, p)
	result.Candidates = len(candidates)

	for _, i := range candidates {
		if p.HoldingPeriod >= len(bars)-i {
			result.Dropped++
			continue
		}
		exit := i + p.HoldingPeriod
		ev, err := buildEvent(bars, derived, i, exit)
		if err != nil {
			result.Warnings = append(result.Warnings, model.SkippedEvent{
				Date:   bars[i].Date,
				Index:  i,
				Reason: err.Error(),
			})
			continue
		}
		result.Events = append(result.Events, ev)
	}

	if len(result.Events) == 0 {
		result.Outcome = model.OutcomeNoBreakouts
		return result, ErrNoBreakouts
	}

	returns := make([]float64, len(result.Events))
	for i, ev := range result.Events {
		returns[i] = ev.HoldingReturnPct
	}
	result.Summary = calculator.Summarize(returns)
	result.Outcome = model.OutcomeBreakouts
	return result, nil
}

// ValidateSeries enforces the collaborator contract: strictly ascending
// dates, positive finite closes, non-negative volumes.
func ValidateSeries(bars []model.DailyBar) error {
	for i, b := range bars {
		if math.IsNaN(b.Close) || math.IsInf(b.Close, 0) || b.Close <= 0 {
			return &InvalidSeriesError{Index: i, Date: b.Date, Reason: fmt.Sprintf("close %v must be positive", b.Close)}
		}
		if b.Volume < 0 {
			return &InvalidSeriesError{Index: i, Date: b.Date, Reason: fmt.Sprintf("volume %d must be non-negative", b.Volume)}
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return &InvalidSeriesError{Index: i, Date: b.Date, Reason: "dates must be strictly ascending"}
		}
	}
	return nil
}

// Derive computes the rolling volume average, the single-period return and
// the volume ratio, all aligned with bars.
func Derive(bars []model.DailyBar, p Params) (*model.DerivedSeries, error) {
	p = p.withDefaults()
	volumes := model.Volumes(bars)

	ma, err := calculator.RollingSMA(volumes, p.MAWindow)
	if err != nil {
		return nil, fmt.Errorf("volume average: %w", err)
	}
	rets, err := calculator.PctChange(model.Closes(bars), p.ReturnLag)
	if err != nil {
		return nil, fmt.Errorf("daily return: %w", err)
	}
	ratio, err := calculator.VolumeRatio(volumes, ma)
	if err != nil {
		return nil, fmt.Errorf("volume ratio: %w", err)
	}
	return &model.DerivedSeries{VolumeMA: ma, DailyReturn: rets, VolumeRatio: ratio}, nil
}

// detect returns the ascending indices of breakout days. Both conditions
// are strict: a value exactly at a threshold does not qualify.
func detect(bars []model.DailyBar, d *model.DerivedSeries, p Params) []int {
	volFactor := 1 + p.VolumeThresholdPct/100
	minReturn := p.PriceChangeThresholdPct / 100

	var idx []int
	for i, b := range bars {
		ma, ret := d.VolumeMA[i], d.DailyReturn[i]
		if !calculator.Defined(ma) || !calculator.Defined(ret) {
			continue
		}
		if float64(b.Volume) > ma*volFactor && ret > minReturn {
			idx = append(idx, i)
		}
	}
	return idx
}

func buildEvent(bars []model.DailyBar, d *model.DerivedSeries, i, exit int) (model.BreakoutEvent, error) {
	if exit < 0 || exit >= len(bars) {
		return model.BreakoutEvent{}, fmt.Errorf("exit index %d outside series of %d bars", exit, len(bars))
	}
	entry, out := bars[i].Close, bars[exit].Close
	if !calculator.Defined(entry) || entry <= 0 {
		return model.BreakoutEvent{}, fmt.Errorf("missing entry price at index %d", i)
	}
	if !calculator.Defined(out) || out <= 0 {
		return model.BreakoutEvent{}, fmt.Errorf("missing exit price at index %d", exit)
	}
	if !calculator.Defined(d.VolumeRatio[i]) {
		return model.BreakoutEvent{}, fmt.Errorf("volume ratio undefined at index %d", i)
	}

	return model.BreakoutEvent{
		Date:              bars[i].Date,
		Index:             i,
		Volume:            bars[i].Volume,
		VolumeMA:          calculator.RoundInt(d.VolumeMA[i]),
		VolumePctAboveAvg: calculator.Round2(d.VolumeRatio[i]),
		PriceChangePct:    calculator.Round2(d.DailyReturn[i] * 100),
		EntryPrice:        entry,
		ExitPrice:         out,
		ExitDate:          bars[exit].Date,
		HoldingReturnPct:  calculator.Round2((out - entry) / entry * 100),
	}, nil
}
