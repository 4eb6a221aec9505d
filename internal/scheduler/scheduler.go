// Package scheduler runs the expiry sweep in the background so overdue
// transactions are closed even when nobody touches them.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/sweeper"
)

// Sweeper is satisfied by *sweeper.Sweeper.
type Sweeper interface {
	Sweep(ctx context.Context, scope sweeper.Scope) (sweeper.Result, error)
}

type Scheduler struct {
	sched    gocron.Scheduler
	sweeper  Sweeper
	interval time.Duration
	timeout  time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
	started  bool
}

func New(s Sweeper, interval time.Duration, log *logger.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		sched:    sched,
		sweeper:  s,
		interval: interval,
		timeout:  interval,
		logger:   log,
	}, nil
}

// Start registers the sweep job and starts the scheduler. A zero interval
// leaves the scheduler idle.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("SCHEDULER", "Background sweep disabled")
		return nil
	}

	ctx, s.cancel = context.WithCancel(ctx)
	job, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.run, ctx),
		gocron.WithName("expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		s.cancel()
		return fmt.Errorf("register sweep job: %w", err)
	}

	s.sched.Start()
	s.started = true
	s.logger.Info("SCHEDULER", fmt.Sprintf("Sweep job %s every %s", job.ID(), s.interval))
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.sweeper.Sweep(ctx, sweeper.Scope{}); err != nil {
		s.logger.Error("SCHEDULER", fmt.Sprintf("Background sweep failed: %v", err))
	}
}

func (s *Scheduler) Shutdown() error {
	if s.cancel != nil {
		s.cancel()
	}
	if !s.started {
		return nil
	}
	return s.sched.Shutdown()
}
