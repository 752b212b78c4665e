package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BreakoutScanner/internal/analyzer"
	"BreakoutScanner/internal/collector"
	"BreakoutScanner/internal/model"
	"BreakoutScanner/internal/notifier"

	"github.com/rs/zerolog"
)

// Request describes one analysis run.
type Request struct {
	Symbol string
	Start  time.Time
	End    time.Time
	Params analyzer.Params
}

// Report is the outcome of a run, ready for presentation.
type Report struct {
	Request Request
	Series  *model.PriceSeries
	Result  *model.AnalysisResult
	// Text is the rendered report, or the informational message for the
	// empty outcomes.
	Text string
}

// Outcome is shorthand for the result's terminal state.
func (r *Report) Outcome() model.Outcome {
	if r.Result == nil {
		return model.OutcomeEmptyInput
	}
	return r.Result.Outcome
}

// Scanner wires the market-data collaborator to the analyzer.
type Scanner struct {
	Collector *collector.Collector
	Log       zerolog.Logger
}

// New creates a Scanner.
func New(col *collector.Collector, log zerolog.Logger) *Scanner {
	return &Scanner{Collector: col, Log: log.With().Str("component", "scanner").Logger()}
}

// Run fetches the series and analyzes it. EmptyInput and NoBreakouts are
// returned as reports, not errors.
func (s *Scanner) Run(ctx context.Context, req Request) (*Report, error) {
	series, err := s.Collector.Collect(ctx, req.Symbol, req.Start, req.End)
	if err != nil && !errors.Is(err, collector.ErrNoData) {
		return nil, err
	}
	req.Symbol = series.Symbol

	res, err := analyzer.Analyze(ctx, series.Bars, req.Params)
	report := &Report{Request: req, Series: series, Result: res}
	switch {
	case errors.Is(err, analyzer.ErrEmptyInput):
		report.Text = notifier.FormatNoData(req.Symbol, req.Start, req.End)
	case errors.Is(err, analyzer.ErrNoBreakouts):
		report.Text = notifier.FormatNoBreakouts(req.Symbol)
	case err != nil:
		return nil, fmt.Errorf("analyze %s: %w", req.Symbol, err)
	default:
		report.Text = notifier.FormatReport(req.Symbol, req.Start, req.End, res)
	}

	for _, w := range res.Warnings {
		s.Log.Warn().Str("symbol", req.Symbol).Time("date", w.Date).Str("reason", w.Reason).Msg("breakout skipped")
	}
	s.Log.Info().
		Str("symbol", req.Symbol).
		Int("bars", len(series.Bars)).
		Str("outcome", string(res.Outcome)).
		Int("events", len(res.Events)).
		Int("dropped", res.Dropped).
		Msg("analysis complete")
	return report, nil
}
