package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateRange(t *testing.T) {
	now := time.Date(2024, 10, 15, 16, 0, 0, 0, time.UTC)

	start, end, err := dateRange("", "", 365, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 10, 15, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2023, 10, 16, 0, 0, 0, 0, time.UTC), start)

	start, end, err = dateRange("2024-01-01", "2024-06-30", 365, now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", start.Format(dateLayout))
	assert.Equal(t, "2024-06-30", end.Format(dateLayout))

	for _, tc := range [][2]string{
		{"2024-06-30", "2024-01-01"},
		{"2024-01-01", "2025-01-01"},
		{"yesterday", ""},
		{"", "2024/01/01"},
	} {
		_, _, err := dateRange(tc[0], tc[1], 365, now)
		assert.Error(t, err, "start=%q end=%q", tc[0], tc[1])
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BREAKOUT_PROVIDER", "mock")
	t.Setenv("CACHE_SQLITE_PATH", "")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := runCLI(t, "analyze", "--symbol", "demo", "--start", "2024-01-01", "--end", "2024-07-01", "--csv", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Breakout Analysis | DEMO")
	assert.Contains(t, out, "Total Breakouts: 3")
	assert.Contains(t, out, "Breakout Date,Volume,20d Avg Volume,Volume % Above Avg,Price Change %,Entry Price,Exit Price,10d Return %")
}

func TestAnalyzeCommand_CSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	_, err := runCLI(t, "analyze", "--start", "2024-01-01", "--end", "2024-07-01", "--holding-period", "5", "--csv", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.True(t, strings.HasSuffix(lines[0], "5d Return %"))
	assert.Len(t, lines, 5, "header plus four surges")
}

func TestAnalyzeCommand_RejectsLowThreshold(t *testing.T) {
	_, err := runCLI(t, "analyze", "--volume-threshold", "10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume_threshold_pct")
}
