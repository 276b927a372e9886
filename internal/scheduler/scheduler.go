// Package scheduler runs the periodic workflow sweeps: offer expiry notices
// and overdue onboarding reminders.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one sweep. Run returns how many items it handled.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// Scheduler wraps robfig/cron and fires every job on a fixed interval.
type Scheduler struct {
	cron *cron.Cron
	spec string
	jobs []Job
	log  *slog.Logger
}

// New creates a Scheduler that fires every interval. A cycle still running
// when the next tick arrives causes that tick to be skipped.
func New(interval time.Duration, log *slog.Logger, jobs ...Job) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec: fmt.Sprintf("@every %s", interval),
		jobs: jobs,
		log:  log,
	}
}

// Start registers the sweep and starts the cron loop. One cycle also runs
// immediately so nothing waits for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(%q): %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("sweep scheduler started", "spec", s.spec, "jobs", len(s.jobs))

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the cron loop and waits for a running cycle to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("sweep scheduler stop timed out")
	}
	s.log.Info("sweep scheduler stopped")
}

// RunOnce runs every job in order. A failing job is logged and does not stop
// the others.
func (s *Scheduler) RunOnce(ctx context.Context) {
	for _, job := range s.jobs {
		if ctx.Err() != nil {
			return
		}
		start := time.Now()
		n, err := job.Run(ctx)
		if err != nil {
			s.log.Warn("sweep failed", "job", job.Name, "handled", n, "err", err)
			continue
		}
		s.log.Info("sweep complete", "job", job.Name, "handled", n, "took", time.Since(start))
	}
}
