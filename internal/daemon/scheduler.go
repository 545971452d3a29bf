package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/docpress/docpress/internal/logfields"
)

// Scheduler wraps gocron for the daemon's periodic rebuild job.
type Scheduler struct {
	cron gocron.Scheduler
}

// NewScheduler creates a new scheduler instance. Jobs do not run until Start.
func NewScheduler() (*Scheduler, error) {
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to construct scheduler: %w", err)
	}
	return &Scheduler{cron: cron}, nil
}

// Start begins executing registered jobs.
func (s *Scheduler) Start(context.Context) {
	s.cron.Start()
	slog.Info("Scheduler started", logfields.Count(len(s.cron.Jobs())))
}

// Stop shuts the scheduler down, waiting for running jobs to finish.
func (s *Scheduler) Stop(context.Context) error {
	slog.Info("Scheduler stopping")
	return s.cron.Shutdown()
}

// ScheduleEvery registers task to run at a fixed interval and returns the
// job ID for later management.
func (s *Scheduler) ScheduleEvery(name string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("job %s: interval must be positive, got %v", name, interval)
	}

	job, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName(name),
	)
	if err != nil {
		return "", fmt.Errorf("failed to register job %s: %w", name, err)
	}

	slog.Info("Registered periodic job",
		slog.String("job", name),
		logfields.Duration(interval))
	return job.ID().String(), nil
}

// Reschedule replaces the interval of an existing job, keeping its task.
func (s *Scheduler) Reschedule(jobID string, interval time.Duration, task func()) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive, got %v", interval)
	}

	id, err := uuid.Parse(jobID)
	if err != nil {
		return "", fmt.Errorf("invalid job ID %q: %w", jobID, err)
	}

	job, err := s.cron.Update(id,
		gocron.DurationJob(interval),
		gocron.NewTask(task),
	)
	if err != nil {
		return "", fmt.Errorf("failed to reschedule job %s: %w", jobID, err)
	}

	slog.Info("Rescheduled periodic job", logfields.Duration(interval))
	return job.ID().String(), nil
}
