// Package sweep drives the periodic request lifecycle transitions. Deadlines
// are civil IST wall-clock comparisons against stored exam dates; a run is a
// pair of guarded bulk updates, so overlapping or repeated runs are harmless.
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/scribeconnect/scribe-portal-api/pkg/clock"
)

type requestSweeper interface {
	CompleteElapsed(ctx context.Context, now clock.CivilTime) (int64, error)
	TimeOutElapsed(ctx context.Context, now clock.CivilTime) (int64, error)
}

type sweepObserver interface {
	ObserveSweep(completed, timedOut int64, duration time.Duration, err error)
}

// Sweeper runs the lifecycle sweep on a fixed interval.
type Sweeper struct {
	requests requestSweeper
	metrics  sweepObserver
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// New constructs a Sweeper. metrics may be nil.
func New(requests requestSweeper, metrics sweepObserver, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Sweeper {
	if clk == nil {
		clk = clock.System{}
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{
		requests: requests,
		metrics:  metrics,
		clock:    clk,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start launches the sweep loop. The first run happens immediately.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Sugar().Infow("starting lifecycle sweep", "interval", s.interval.String())
	go s.run(ctx)
}

// Stop signals the loop to exit.
func (s *Sweeper) Stop() {
	close(s.stopChan)
}

func (s *Sweeper) run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("lifecycle sweep stopped")
			return
		case <-ctx.Done():
			s.logger.Info("lifecycle sweep cancelled")
			return
		}
	}
}

// Sweep executes one pass: completed bookings first, then expired open
// requests. Errors are logged, never fatal; the next tick retries.
func (s *Sweeper) Sweep(ctx context.Context) {
	started := time.Now()
	now := s.clock.Civil()

	completed, err := s.requests.CompleteElapsed(ctx, now)
	if err != nil {
		s.logger.Sugar().Errorw("sweep failed to complete elapsed bookings", "error", err)
		s.observe(0, 0, started, err)
		return
	}

	timedOut, err := s.requests.TimeOutElapsed(ctx, now)
	if err != nil {
		s.logger.Sugar().Errorw("sweep failed to time out open requests", "error", err)
		s.observe(completed, 0, started, err)
		return
	}

	if completed > 0 || timedOut > 0 {
		s.logger.Sugar().Infow("lifecycle sweep applied transitions",
			"completed", completed, "timed_out", timedOut,
			"civil_date", now.Date(), "civil_time", now.TimeOfDay())
	}
	s.observe(completed, timedOut, started, nil)
}

func (s *Sweeper) observe(completed, timedOut int64, started time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveSweep(completed, timedOut, time.Since(started), err)
}
