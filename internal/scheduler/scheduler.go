// Package scheduler repeats a city run on a cron spec inside one process.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron. At most one run is in flight: a tick that
// fires while the previous run is still going is skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    cron.Job
	faults chan error
	log    *slog.Logger
}

// New builds a scheduler that calls run on spec, e.g. "@every 6h".
func New(ctx context.Context, spec string, run func(ctx context.Context) error, log *slog.Logger) *Scheduler {
	s := &Scheduler{
		spec:   spec,
		faults: make(chan error, 1),
		log:    log.With("component", "scheduler"),
	}
	cl := cronLogger{log: s.log}
	s.cron = cron.New(cron.WithLogger(cl))
	s.job = cron.NewChain(cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(func() {
		s.runOnce(ctx, run)
	}))
	return s
}

// Run starts the cron loop and runs once immediately. It returns nil when ctx
// is cancelled, or the first error a run returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.cron.AddJob(s.spec, s.job); err != nil {
		return fmt.Errorf("cron.AddJob: %w", err)
	}
	s.cron.Start()
	s.log.Info("⏰ cron started", "spec", s.spec)

	go s.job.Run()

	var err error
	select {
	case <-ctx.Done():
	case err = <-s.faults:
	}

	<-s.cron.Stop().Done()
	s.log.Info("⏰ cron stopped")
	return err
}

func (s *Scheduler) runOnce(ctx context.Context, run func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			s.fault(fmt.Errorf("panic in scheduled run: %v", r))
		}
	}()
	if err := run(ctx); err != nil {
		s.fault(err)
	}
}

func (s *Scheduler) fault(err error) {
	select {
	case s.faults <- err:
	default:
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
