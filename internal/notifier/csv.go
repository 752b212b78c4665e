package notifier

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"BreakoutScanner/internal/model"
)

// CSVFileName is the default export file name for symbol.
func CSVFileName(symbol string) string {
	return fmt.Sprintf("%s_breakout_analysis.csv", strings.ToUpper(symbol))
}

// WriteCSV writes the event table, one row per event.
func WriteCSV(w io.Writer, holdingPeriod int, events []model.BreakoutEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(holdingPeriod)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(Rows(events)); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
