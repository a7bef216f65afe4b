package scheduler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// Job represents a scheduled job
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Scheduler manages background jobs. Schedules use six fields, seconds first.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger

	mu  sync.Mutex
	ctx context.Context
}

// New creates a new scheduler
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  logger.With("component", "scheduler"),
		ctx:  context.Background(),
	}
}

// Start starts the scheduler. Jobs run with ctx until Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 0 8 * * *"        - Every day at 08:00
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.run(s.context(), job)
	})
	if err != nil {
		return err
	}

	s.log.Info("Job registered", "schedule", schedule, "job", job.Name())
	return nil
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	s.log.DebugContext(ctx, "Running job", "job", job.Name())
	if err := job.Run(ctx); err != nil {
		s.log.ErrorContext(ctx, "Job failed", "job", job.Name(), "error", err)
		return
	}
	s.log.DebugContext(ctx, "Job completed", "job", job.Name())
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(ctx context.Context, job Job) error {
	s.log.InfoContext(ctx, "Running job immediately", "job", job.Name())
	return job.Run(ctx)
}
