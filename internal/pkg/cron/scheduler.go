package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job
type Job struct {
	Name     string
	Interval time.Duration
	// Timeout bounds a single run. Zero means the run is bounded only by the
	// scheduler's lifetime.
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals until stopped.
type Scheduler struct {
	jobs   []Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make([]Job, 0),
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob registers a job. Jobs with a non-positive interval are ignored,
// which lets callers disable a job through configuration.
func (s *Scheduler) AddJob(job Job) {
	if job.Interval <= 0 {
		slog.Info("Cron job disabled", "name", job.Name)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, job)
	slog.Info("Cron job registered", "name", job.Name, "interval", job.Interval, "timeout", job.Timeout)
}

// Jobs returns a copy of the registered jobs.
func (s *Scheduler) Jobs() []Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Job(nil), s.jobs...)
}

// Start begins running all scheduled jobs. Each job first runs one interval
// after Start; callers that need fresh state at boot run it themselves.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(job)
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

func (s *Scheduler) runJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(s.ctx, job)
		}
	}
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(ctx context.Context, job Job) error {
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	err := job.Fn(ctx)
	if err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
	return err
}

// RunOnce runs every job once and returns the number of failures.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for _, job := range s.Jobs() {
		if err := s.executeJob(ctx, job); err != nil {
			failed++
		}
	}
	return failed
}
