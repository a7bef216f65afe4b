package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	applog "balancebooks/internal/log"
)

type countingJob struct {
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

type stubProcessor struct {
	n   int
	err error
}

func (p stubProcessor) ProcessUpcoming(context.Context) (int, error) { return p.n, p.err }

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := New(applog.Nop().Logger)
	if err := s.AddJob("not a schedule", &countingJob{}); err == nil {
		t.Error("expected error for invalid schedule")
	}
	// Five-field expressions need the seconds column.
	if err := s.AddJob("0 8 * * *", &countingJob{}); err == nil {
		t.Error("expected error for schedule without seconds")
	}
}

func TestScheduler_RunsRegisteredJob(t *testing.T) {
	s := New(applog.Nop().Logger)
	job := &countingJob{}
	if err := s.AddJob("@every 1s", job); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for job.runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	s.Stop()

	if job.runs.Load() == 0 {
		t.Error("expected job to run at least once")
	}
}

func TestScheduler_SkipsAfterContextDone(t *testing.T) {
	s := New(applog.Nop().Logger)
	job := &countingJob{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.run(ctx, job)

	if job.runs.Load() != 0 {
		t.Error("job should not run with a cancelled context")
	}
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(nil)
	want := errors.New("boom")
	job := &countingJob{err: want}

	if err := s.RunNow(context.Background(), job); !errors.Is(err, want) {
		t.Errorf("expected job error, got %v", err)
	}
	if job.runs.Load() != 1 {
		t.Errorf("expected 1 run, got %d", job.runs.Load())
	}
}

func TestBillReminderJob(t *testing.T) {
	job := NewBillReminderJob(stubProcessor{n: 2}, nil)
	if job.Name() != "bill_reminder" {
		t.Errorf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	want := errors.New("broker down")
	job = NewBillReminderJob(stubProcessor{err: want}, applog.Nop().Logger)
	if err := job.Run(context.Background()); !errors.Is(err, want) {
		t.Errorf("expected processor error, got %v", err)
	}
}
