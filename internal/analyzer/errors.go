package analyzer

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmptyInput is returned when the series has no bars.
	ErrEmptyInput = errors.New("empty input series")
	// ErrNoBreakouts is returned when no day yields a reportable event.
	ErrNoBreakouts = errors.New("no breakout conditions met")
	// ErrInvalidSeries marks a structural contract violation in the input.
	ErrInvalidSeries = errors.New("invalid series")
	// ErrInvalidParams marks thresholds or windows outside their domain.
	ErrInvalidParams = errors.New("invalid params")
)

// InvalidSeriesError describes the first bar that breaks the series contract.
type InvalidSeriesError struct {
	Index  int
	Date   time.Time
	Reason string
}

func (e *InvalidSeriesError) Error() string {
	return fmt.Sprintf("invalid series at bar %d (%s): %s", e.Index, e.Date.Format("2006-01-02"), e.Reason)
}

func (e *InvalidSeriesError) Unwrap() error { return ErrInvalidSeries }

// IsInformational reports whether err is one of the expected empty outcomes
// rather than a failure.
func IsInformational(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrNoBreakouts)
}
