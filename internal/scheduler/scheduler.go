package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/shake819/remind-api/internal/clock"
	"github.com/shake819/remind-api/pkg/logger"
	"github.com/shake819/remind-api/pkg/metrics"
)

// Ticker is the day-boundary pass the scheduler drives.
type Ticker interface {
	Tick(ctx context.Context) error
}

// Scheduler turns a fine-grained cron pulse into an at-most-once-per-day
// trigger. lastRunDay is advisory state: losing it costs a redundant tick,
// never a duplicate notification, because the tick itself is idempotent.
type Scheduler struct {
	ticker  Ticker
	clock   clock.Clock
	logger  *logger.Logger
	metrics *metrics.Metrics
	cron    *cron.Cron

	mu         sync.Mutex
	lastRunDay string
}

func New(ticker Ticker, clk clock.Clock, log *logger.Logger, m *metrics.Metrics) *Scheduler {
	return &Scheduler{
		ticker:  ticker,
		clock:   clk,
		logger:  log,
		metrics: m,
	}
}

// Start registers the pulse on the given cron spec (default: once a minute)
// and runs until ctx is cancelled. Multiple pulses landing on the same
// calendar day collapse into one tick.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = "* * * * *"
	}

	s.cron = cron.New()
	if _, err := s.cron.AddFunc(spec, func() { s.pulse(ctx) }); err != nil {
		return fmt.Errorf("failed to register cron pulse %q: %w", spec, err)
	}

	s.logger.Info("scheduler starting", "spec", spec)
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.cron.Stop()
		s.logger.Info("scheduler stopped")
	}()
	return nil
}

// RunNow forces re-evaluation regardless of whether today already ran. Store
// exclusion against a concurrent automatic pulse is the engine serializer's
// job; this only clears the day guard.
func (s *Scheduler) RunNow(ctx context.Context) error {
	s.mu.Lock()
	s.lastRunDay = ""
	s.mu.Unlock()
	return s.pulse(ctx)
}

func (s *Scheduler) pulse(ctx context.Context) error {
	today := clock.DayKey(s.clock.Now())

	s.mu.Lock()
	if today == s.lastRunDay {
		s.mu.Unlock()
		if s.metrics != nil {
			s.metrics.TicksSkipped.Inc()
		}
		return nil
	}
	s.lastRunDay = today
	s.mu.Unlock()

	if err := s.ticker.Tick(ctx); err != nil {
		// Clear the guard so a later pulse today retries; the tick is
		// idempotent so nothing fires twice.
		s.mu.Lock()
		if s.lastRunDay == today {
			s.lastRunDay = ""
		}
		s.mu.Unlock()
		s.logger.Error(err, "tick failed", "today", today)
		return err
	}
	return nil
}
