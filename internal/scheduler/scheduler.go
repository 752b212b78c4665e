package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BreakoutScanner/internal/analyzer"
	"BreakoutScanner/internal/notifier"
	"BreakoutScanner/internal/scanner"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Sender delivers a rendered report.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Job is the analysis re-run on every tick.
type Job struct {
	Symbol       string
	LookbackDays int
	Params       analyzer.Params
}

// Scheduler re-runs the configured analysis on a cron schedule.
type Scheduler struct {
	Cron    *cron.Cron
	Scanner *scanner.Scanner
	Sender  Sender // nil disables delivery
	Job     Job
	Log     zerolog.Logger
	Ctx     context.Context

	now func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *scanner.Scanner, sender Sender, job Job, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Scanner: sc,
		Sender:  sender,
		Job:     job,
		Log:     log.With().Str("component", "scheduler").Logger(),
		Ctx:     ctx,
		now:     time.Now,
	}
}

// Register adds the analysis task under spec (six-field cron with seconds).
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.RunNow); err != nil {
		return fmt.Errorf("register analysis task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Str("symbol", s.Job.Symbol).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes the analysis task immediately.
func (s *Scheduler) RunNow() {
	text, err := s.run(s.Ctx, s.Job.Symbol)
	if err != nil {
		text = fmt.Sprintf("Breakout analysis for %s failed: %v", s.Job.Symbol, err)
	}
	s.trySend(notifier.Preformatted(text))
}

func (s *Scheduler) run(ctx context.Context, symbol string) (string, error) {
	runID := uuid.NewString()
	log := s.Log.With().Str("run_id", runID).Str("symbol", symbol).Logger()
	log.Info().Msg("running breakout analysis")

	// End is exclusive: today's session is still open.
	end := s.now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -s.Job.LookbackDays)
	rep, err := s.Scanner.Run(ctx, scanner.Request{
		Symbol: symbol,
		Start:  start,
		End:    end,
		Params: s.Job.Params,
	})
	if err != nil {
		log.Error().Err(err).Msg("analysis failed")
		return "", err
	}
	log.Info().Str("outcome", string(rep.Outcome())).Msg("analysis finished")
	return rep.Text, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	switch fields[0] {
	case "/analyze":
		symbol := s.Job.Symbol
		if len(fields) > 1 {
			symbol = strings.ToUpper(fields[1])
		}
		text, err := s.run(ctx, symbol)
		if err != nil {
			text = fmt.Sprintf("Breakout analysis for %s failed: %v", symbol, err)
		}
		return notifier.Preformatted(text)
	case "/params":
		p := s.Job.Params
		return fmt.Sprintf("Symbol: %s\nLookback: %d days\nVolume threshold: %.0f%%\nPrice threshold: %.2f%%\nHolding period: %d days",
			s.Job.Symbol, s.Job.LookbackDays, p.VolumeThresholdPct, p.PriceChangeThresholdPct, p.HoldingPeriod)
	default:
		return helpText
	}
}

const helpText = "Commands:\n• /analyze [SYMBOL]\n• /params"

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		s.Log.Info().Str("report", text).Msg("report ready")
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.Log.Error().Err(err).Msg("send notification")
	}
}
