package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Cleaner deletes stored calculations older than the retention window.
type Cleaner interface {
	CleanupCalculations(retention time.Duration) (int64, error)
}

// Scheduler runs the periodic maintenance jobs of the server.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// New creates a scheduler that purges calculations older than retention on
// schedule (a standard cron spec or descriptor such as "@daily").
func New(schedule string, retention time.Duration, cleaner Cleaner, log *slog.Logger) (*Scheduler, error) {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduler"))

	adapter := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(adapter),
		cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
	)

	job := func() {
		if _, err := cleaner.CleanupCalculations(retention); err != nil {
			log.Error("calculation cleanup failed", slog.String("error", err.Error()))
		}
	}
	if _, err := c.AddFunc(schedule, job); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", schedule, err)
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))
}

// Stop stops scheduling and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next returns when the cleanup job runs next. Zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append([]any{slog.String("error", err.Error())}, keysAndValues...)...)
}
