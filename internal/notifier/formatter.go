package notifier

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"BreakoutScanner/internal/calculator"
	"BreakoutScanner/internal/model"
)

const dateLayout = "2006-01-02"

// FormatReport renders the summary metrics and the event table.
func FormatReport(symbol string, start, end time.Time, res *model.AnalysisResult) string {
	var b strings.Builder
	n := res.HoldingPeriod
	s := res.Summary

	b.WriteString(fmt.Sprintf("Breakout Analysis | %s %s → %s\n\n", symbol, start.Format(dateLayout), end.Format(dateLayout)))

	b.WriteString("Summary Statistics\n")
	b.WriteString(fmt.Sprintf("  Total Breakouts: %d\n", s.Count))
	b.WriteString(fmt.Sprintf("  Average %d-day Return: %.2f%%\n", n, s.MeanReturnPct))
	b.WriteString(fmt.Sprintf("  Win Rate: %.1f%%\n", s.WinRate*100))
	b.WriteString(fmt.Sprintf("  Best Return: %.2f%%\n", s.MaxReturnPct))
	b.WriteString(fmt.Sprintf("  Worst Return: %.2f%%\n", s.MinReturnPct))
	if res.Dropped > 0 {
		b.WriteString(fmt.Sprintf("  (%d breakout(s) too recent for a %d-day exit)\n", res.Dropped, n))
	}

	b.WriteString("\nBreakout Analysis Results\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(Columns(n), "\t")+"\t")
	for _, row := range Rows(res.Events) {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	tw.Flush()

	if len(res.Warnings) > 0 {
		b.WriteString("\nWarnings\n")
		for _, w := range res.Warnings {
			b.WriteString(fmt.Sprintf("  Error processing breakout date %s: %s\n", w.Date.Format(dateLayout), w.Reason))
		}
	}
	return b.String()
}

// FormatNoData is the message for an empty series.
func FormatNoData(symbol string, start, end time.Time) string {
	return fmt.Sprintf("No data found for %s between %s and %s", symbol, start.Format(dateLayout), end.Format(dateLayout))
}

// FormatNoBreakouts is the message for a series without qualifying events.
func FormatNoBreakouts(symbol string) string {
	return fmt.Sprintf("No breakout conditions met for %s", symbol)
}

// Columns returns the export header for a holding period of n days.
func Columns(n int) []string {
	return []string{
		"Breakout Date",
		"Volume",
		"20d Avg Volume",
		"Volume % Above Avg",
		"Price Change %",
		"Entry Price",
		"Exit Price",
		fmt.Sprintf("%dd Return %%", n),
	}
}

// Rows formats events in column order. Prices are shown with 2 decimals.
func Rows(events []model.BreakoutEvent) [][]string {
	rows := make([][]string, len(events))
	for i, ev := range events {
		rows[i] = []string{
			ev.Date.Format(dateLayout),
			fmt.Sprintf("%d", ev.Volume),
			fmt.Sprintf("%d", ev.VolumeMA),
			fmt.Sprintf("%.2f", ev.VolumePctAboveAvg),
			fmt.Sprintf("%.2f", ev.PriceChangePct),
			fmt.Sprintf("%.2f", calculator.Round2(ev.EntryPrice)),
			fmt.Sprintf("%.2f", calculator.Round2(ev.ExitPrice)),
			fmt.Sprintf("%.2f", ev.HoldingReturnPct),
		}
	}
	return rows
}
