package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Scheduler runs tasks on cron specs. A run that is still going when its next
// tick arrives is skipped rather than stacked.
type Scheduler struct {
	c   *cron.Cron
	log *zap.Logger
}

func New(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{s: log.Sugar()}
	return &Scheduler{
		c: cron.New(
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
			cron.WithLogger(cl),
		),
		log: log,
	}
}

// Add registers task under spec (5-field cron or a descriptor like
// "@every 30m"). Each run gets ctx.
func (s *Scheduler) Add(ctx context.Context, spec, name string, task Task) error {
	_, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			s.log.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
			return
		}
		s.log.Debug("scheduled task done", zap.String("task", name), zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// Next reports the next activation across all entries, zero when none.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.c.Entries() {
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// in-flight tasks.
func (s *Scheduler) Run(ctx context.Context) {
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
}

// Every runs task once immediately and then on every interval until ctx ends.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *zap.Logger) error {
	s := New(log)
	if err := s.Add(ctx, "@every "+interval.String(), name, task); err != nil {
		return err
	}
	go func() {
		if err := task(ctx); err != nil && log != nil {
			log.Error("scheduled task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	s.Run(ctx)
	return nil
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, kv ...any) { l.s.Debugw(msg, kv...) }

func (l cronLogger) Error(err error, msg string, kv ...any) {
	l.s.Errorw(msg, append(kv, "error", err)...)
}
