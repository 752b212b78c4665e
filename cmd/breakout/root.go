package main

import (
	"fmt"
	"os"
	"time"

	"BreakoutScanner/internal/analyzer"
	"BreakoutScanner/internal/collector"
	"BreakoutScanner/internal/config"
	"BreakoutScanner/internal/model"
	"BreakoutScanner/internal/notifier"
	"BreakoutScanner/internal/scanner"
	"BreakoutScanner/internal/scheduler"
	"BreakoutScanner/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type app struct {
	cfgPath string
	cfg     *config.Config
	log     zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "breakout",
		Short:         "Detect volume and price breakouts and measure forward returns",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", cfgPath, "path to the YAML config file")

	root.AddCommand(a.analyzeCmd())
	root.AddCommand(a.watchCmd())
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(a.log)
	return nil
}

// params maps the validated config onto analyzer thresholds.
func (a *app) params() analyzer.Params {
	c := a.cfg.Analysis
	return analyzer.Params{
		VolumeThresholdPct:      c.VolumeThresholdPct,
		PriceChangeThresholdPct: c.PriceChangeThresholdPct,
		HoldingPeriod:           c.HoldingPeriodDays,
		MAWindow:                c.MAWindow,
		ReturnLag:               c.ReturnLag,
	}
}

// newScanner builds the fetch chain. A cache that fails to open is skipped.
func (a *app) newScanner() (*scanner.Scanner, func(), error) {
	var fetcher collector.Fetcher
	switch a.cfg.DataSource.Provider {
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	case "yahoo":
		fetcher = collector.NewYahooFetcher(a.cfg.Proxy)
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", a.cfg.DataSource.Provider)
	}

	cleanup := func() {}
	if path := a.cfg.Cache.SQLitePath; path != "" {
		cache, err := collector.NewBarCache(path, a.cfg.Cache.TTL)
		if err != nil {
			a.log.Warn().Err(err).Str("path", path).Msg("bar cache unavailable, fetching directly")
		} else {
			fetcher = collector.NewCachedFetcher(fetcher, cache, a.log)
			cleanup = func() { cache.Close() }
		}
	}
	a.log.Debug().Str("source", fetcher.Name()).Msg("data source ready")

	return scanner.New(collector.NewCollector(fetcher, a.log), a.log), cleanup, nil
}

func (a *app) analyzeCmd() *cobra.Command {
	var (
		symbol, startStr, endStr, csvPath string
		volume, price                     float64
		holding                           int
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one symbol over a date range",
		Example: "  breakout analyze --symbol AAPL --start 2024-01-01 --end 2024-12-31 \\\n" +
			"    --volume-threshold 200 --price-threshold 2 --holding-period 10 --csv -",
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("symbol") {
				a.cfg.Analysis.Symbol = symbol
			}
			if flags.Changed("volume-threshold") {
				a.cfg.Analysis.VolumeThresholdPct = volume
			}
			if flags.Changed("price-threshold") {
				a.cfg.Analysis.PriceChangeThresholdPct = price
			}
			if flags.Changed("holding-period") {
				a.cfg.Analysis.HoldingPeriodDays = holding
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			start, end, err := dateRange(startStr, endStr, a.cfg.Analysis.LookbackDays, time.Now())
			if err != nil {
				return err
			}

			sc, cleanup, err := a.newScanner()
			if err != nil {
				return err
			}
			defer cleanup()

			rep, err := sc.Run(cmd.Context(), scanner.Request{
				Symbol: a.cfg.Analysis.Symbol,
				Start:  start,
				End:    end,
				Params: a.params(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.Text)

			if csvPath == "" || rep.Outcome() != model.OutcomeBreakouts {
				return nil
			}
			return writeCSV(cmd, csvPath, rep)
		},
	}

	f := cmd.Flags()
	f.StringVar(&symbol, "symbol", "", "stock symbol (default from config)")
	f.StringVar(&startStr, "start", "", "start date YYYY-MM-DD (default: lookback_days before end)")
	f.StringVar(&endStr, "end", "", "end date YYYY-MM-DD, exclusive (default: today)")
	f.Float64Var(&volume, "volume-threshold", 0, "volume % above the 20-day average")
	f.Float64Var(&price, "price-threshold", 0, "minimum daily price increase %")
	f.IntVar(&holding, "holding-period", 0, "trading days to hold after a breakout")
	f.StringVar(&csvPath, "csv", "", "export events as CSV to this path ('-' for stdout, 'auto' for SYMBOL_breakout_analysis.csv)")
	return cmd
}

func writeCSV(cmd *cobra.Command, path string, rep *scanner.Report) error {
	if path == "-" {
		return notifier.WriteCSV(cmd.OutOrStdout(), rep.Result.HoldingPeriod, rep.Result.Events)
	}
	if path == "auto" {
		path = notifier.CSVFileName(rep.Request.Symbol)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()
	if err := notifier.WriteCSV(f, rep.Result.HoldingPeriod, rep.Result.Events); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return f.Close()
}

// dateRange resolves the --start/--end flags. End defaults to today and
// start to lookbackDays before end.
func dateRange(startStr, endStr string, lookbackDays int, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today
	if endStr != "" {
		t, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --end: %w", err)
		}
		if t.After(today) {
			return time.Time{}, time.Time{}, fmt.Errorf("--end %s is in the future", endStr)
		}
		end = t
	}
	start := end.AddDate(0, 0, -lookbackDays)
	if startStr != "" {
		t, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --start: %w", err)
		}
		start = t
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("--start %s must be before --end %s", start.Format(dateLayout), end.Format(dateLayout))
	}
	return start, end, nil
}

func (a *app) watchCmd() *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the configured analysis on a cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			ctx := cmd.Context()

			sc, cleanup, err := a.newScanner()
			if err != nil {
				return err
			}
			defer cleanup()

			var sender scheduler.Sender
			var tn *notifier.TelegramNotifier
			if a.cfg.TelegramEnabled() {
				tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
				sender = tn
			} else {
				a.log.Warn().Msg("telegram not configured, reports are only logged")
			}

			sched := scheduler.NewScheduler(ctx, sc, sender, scheduler.Job{
				Symbol:       a.cfg.Analysis.Symbol,
				LookbackDays: a.cfg.Analysis.LookbackDays,
				Params:       a.params(),
			}, a.log)
			if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				a.log.Info().Msg("telegram polling started")
			}
			if runNow {
				go sched.RunNow()
			}

			a.log.Info().Str("cron", a.cfg.Schedule.Cron).Msg("watching, press Ctrl+C to stop")
			<-ctx.Done()
			a.log.Info().Msg("shutdown signal received, stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", os.Getenv("RUN_ON_START") == "true", "run the analysis once immediately")
	return cmd
}
