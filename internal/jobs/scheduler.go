// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/simp-lee/pension/internal/metrics"
)

// Job is a named unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs jobs on standard five-field cron schedules. A job that is
// still running when its next tick fires is skipped for that tick.
type Scheduler struct {
	cron    *cron.Cron
	log     *slog.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	jobs   map[string]cron.EntryID
}

// NewScheduler creates a stopped Scheduler evaluating schedules in loc.
// A nil loc means UTC.
func NewScheduler(log *slog.Logger, m *metrics.Metrics, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:     log,
		metrics: m,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]cron.EntryID),
	}
}

// Add registers job under spec. Job names must be unique.
func (s *Scheduler) Add(spec string, job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name()]; exists {
		return fmt.Errorf("jobs: %s is already scheduled", job.Name())
	}
	id, err := s.cron.AddFunc(spec, func() { _ = s.RunNow(s.ctx, job) })
	if err != nil {
		return fmt.Errorf("jobs: invalid schedule %q for %s: %w", spec, job.Name(), err)
	}
	s.jobs[job.Name()] = id
	return nil
}

// Next returns the next activation of the named job, or the zero time if it
// is unknown or the scheduler is not running.
func (s *Scheduler) Next(name string) time.Time {
	s.mu.Lock()
	id, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// RunNow executes job immediately, logging and recording the outcome.
func (s *Scheduler) RunNow(ctx context.Context, job Job) (err error) {
	log := s.log.With("job", job.Name())
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("jobs: %s panicked: %v", job.Name(), r)
		}
		d := time.Since(start)
		s.metrics.JobRun(job.Name(), err, d)
		if err != nil {
			log.ErrorContext(ctx, "job failed", "duration", d, "error", err)
			return
		}
		log.InfoContext(ctx, "job finished", "duration", d)
	}()

	log.InfoContext(ctx, "job started")
	return job.Run(ctx)
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("jobs: stop: %w", ctx.Err())
	}
}
