package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SweepFunc re-enqueues pending work and reports how much it queued.
type SweepFunc func(ctx context.Context) (int, error)

// Sweeper runs a SweepFunc on a cron schedule.
type Sweeper struct {
	cron   *cron.Cron
	sweep  SweepFunc
	logger *zap.Logger
}

// NewSweeper schedules sweep with a standard cron spec or an "@every"
// descriptor. Runs never overlap.
func NewSweeper(spec string, sweep SweepFunc, logger *zap.Logger) (*Sweeper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sweeper{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		sweep:  sweep,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := s.sweep(ctx)
	if err != nil {
		s.logger.Warn("[Sweeper] sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("[Sweeper] booking retries queued", zap.Int("count", n))
	}
}

func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
