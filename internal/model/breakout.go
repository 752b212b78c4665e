package model

import "time"

// Outcome distinguishes the terminal states of an analysis.
type Outcome string

const (
	OutcomeEmptyInput  Outcome = "EMPTY_INPUT"
	OutcomeNoBreakouts Outcome = "NO_BREAKOUTS"
	OutcomeBreakouts   Outcome = "BREAKOUTS"
)

// BreakoutEvent is one flagged day plus its forward return.
type BreakoutEvent struct {
	Date              time.Time
	Index             int
	Volume            int64
	VolumeMA          int64   // trailing average, rounded
	VolumePctAboveAvg float64 // 2 decimals
	PriceChangePct    float64 // 2 decimals
	EntryPrice        float64
	ExitPrice         float64
	ExitDate          time.Time
	HoldingReturnPct  float64 // 2 decimals
}

// SkippedEvent records a breakout day that could not be turned into an event.
type SkippedEvent struct {
	Date   time.Time
	Index  int
	Reason string
}

// Summary aggregates the holding-period returns of all reported events.
type Summary struct {
	Count         int
	MeanReturnPct float64
	WinRate       float64 // fraction in [0, 1]
	MaxReturnPct  float64
	MinReturnPct  float64
}

// AnalysisResult is the output of a breakout analysis.
type AnalysisResult struct {
	Outcome       Outcome
	HoldingPeriod int
	Candidates    int // breakout days before the exit-index check
	Dropped       int // candidates whose exit index fell past the series
	Events        []BreakoutEvent
	Summary       Summary
	Warnings      []SkippedEvent
}

// DerivedSeries holds the per-index statistics computed alongside the bars.
// Undefined positions are NaN.
type DerivedSeries struct {
	VolumeMA    []float64
	DailyReturn []float64 // fraction, not percent
	VolumeRatio []float64 // percent above average
}
