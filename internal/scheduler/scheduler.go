package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/metrics"
	"github.com/schemadoc/schemadoc/internal/registry"
	"github.com/schemadoc/schemadoc/internal/schedule"
)

// ErrInvalidJob marks configuration errors raised synchronously by
// AddJob: unknown job types and malformed schedule specifications.
var ErrInvalidJob = errors.New("invalid job definition")

type Store interface {
	InsertJob(ctx context.Context, job domain.JobDefinition) error
	ListEnabledJobs(ctx context.Context) ([]domain.JobDefinition, error)
	GetJob(ctx context.Context, id string) (domain.JobDefinition, error)
	DeleteJob(ctx context.Context, id string) error
	SetJobEnabled(ctx context.Context, id string, enabled bool) error
	InsertExecution(ctx context.Context, rec domain.ExecutionRecord) (int64, error)
	CompleteExecution(ctx context.Context, executionID int64, completedAt time.Time, status domain.ExecutionStatus, result domain.Payload, errorMessage string) error
	RecordJobRun(ctx context.Context, jobID string, lastRunAt, nextRunAt time.Time) error
}

type Registry interface {
	Lookup(typeName string) (registry.Handler, error)
	Has(typeName string) bool
}

type Notifier interface {
	Dispatch(ctx context.Context, event domain.Event)
}

type Config struct {
	TickInterval time.Duration
}

type entry struct {
	job     domain.JobDefinition
	sched   schedule.Schedule
	nextRun time.Time
}

// Scheduler owns the set of scheduled jobs and triggers due ones on a
// fixed tick. Due jobs run synchronously on the loop goroutine, one at
// a time; a failing job is recorded and never stops the tick.
type Scheduler struct {
	config   Config
	store    Store
	registry Registry
	notifier Notifier
	metrics  metrics.Sink
	clock    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

func New(config Config, store Store, reg Registry, notifier Notifier) *Scheduler {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Minute
	}
	return &Scheduler{
		config:   config,
		store:    store,
		registry: reg,
		notifier: notifier,
		metrics:  metrics.NewNoopSink(),
		clock:    time.Now,
		entries:  make(map[string]*entry),
	}
}

// WithMetrics sets the metrics sink. Returns s for chaining.
func (s *Scheduler) WithMetrics(sink metrics.Sink) *Scheduler {
	s.metrics = sink
	return s
}

// WithClock replaces the time source for due-time computation. Returns
// s for chaining.
func (s *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	s.clock = clock
	return s
}

// AddJob validates, persists and schedules a job definition. Unknown job
// types and malformed schedule specifications fail here with
// ErrInvalidJob; nothing is persisted in that case. When the loop is
// running the job becomes due-eligible immediately.
func (s *Scheduler) AddJob(ctx context.Context, name, typeName, scheduleSpec string, config domain.Payload) (domain.JobDefinition, error) {
	if name == "" {
		return domain.JobDefinition{}, fmt.Errorf("%w: name is empty", ErrInvalidJob)
	}
	if !s.registry.Has(typeName) {
		return domain.JobDefinition{}, fmt.Errorf("%w: no handler registered for job type %q", ErrInvalidJob, typeName)
	}
	sched, err := schedule.Parse(scheduleSpec)
	if err != nil {
		return domain.JobDefinition{}, fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}

	now := s.clock().UTC()
	next := sched.Next(now)
	job := domain.JobDefinition{
		ID:           domain.NewJobID(name, now),
		Name:         name,
		Type:         typeName,
		ScheduleSpec: scheduleSpec,
		Config:       config,
		Enabled:      true,
		CreatedAt:    now,
		NextRunAt:    &next,
	}

	if err := s.store.InsertJob(ctx, job); err != nil {
		return domain.JobDefinition{}, fmt.Errorf("insert job %q: %w", name, err)
	}

	s.mu.Lock()
	s.entries[job.ID] = &entry{job: job, sched: sched, nextRun: next}
	s.mu.Unlock()

	log.Printf("scheduler: job %q added (type=%s, schedule=%s)", name, typeName, scheduleSpec)
	return job, nil
}

// RemoveJob deletes a job definition and its history, and unschedules it
// from the running loop.
func (s *Scheduler) RemoveJob(ctx context.Context, id string) error {
	if err := s.store.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()

	log.Printf("scheduler: job %s removed", id)
	return nil
}

// SetJobEnabled toggles a job. Disabling unschedules it immediately;
// enabling recomputes its next due time from the stored specification.
func (s *Scheduler) SetJobEnabled(ctx context.Context, id string, enabled bool) error {
	if err := s.store.SetJobEnabled(ctx, id, enabled); err != nil {
		return fmt.Errorf("set job enabled: %w", err)
	}

	if !enabled {
		s.mu.Lock()
		delete(s.entries, id)
		s.mu.Unlock()
		log.Printf("scheduler: job %s disabled", id)
		return nil
	}

	job, err := s.store.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	job.Enabled = true
	sched, err := schedule.Parse(job.ScheduleSpec)
	if err != nil {
		return fmt.Errorf("job %q has invalid stored schedule %q: %v", job.Name, job.ScheduleSpec, err)
	}

	next := sched.Next(s.clock().UTC())
	job.NextRunAt = &next
	s.mu.Lock()
	s.entries[id] = &entry{job: job, sched: sched, nextRun: next}
	s.mu.Unlock()

	log.Printf("scheduler: job %q enabled, next run %s", job.Name, next.Format(time.RFC3339))
	return nil
}

// Run executes the scheduling loop until ctx is cancelled. Stopping is
// cooperative: cancellation prevents future ticks while a tick already
// in progress, including any in-flight handler, runs to completion.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.loadJobs(ctx); err != nil {
		return fmt.Errorf("load jobs: %w", err)
	}

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	log.Printf("scheduler: started, tick=%s", s.config.TickInterval)

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// loadJobs reloads every enabled definition from the store and recomputes
// next due times. Next runs are derived from the schedule specification,
// never resumed from persisted state.
func (s *Scheduler) loadJobs(ctx context.Context) error {
	jobs, err := s.store.ListEnabledJobs(ctx)
	if err != nil {
		return err
	}

	now := s.clock().UTC()
	entries := make(map[string]*entry, len(jobs))
	for _, job := range jobs {
		sched, err := schedule.Parse(job.ScheduleSpec)
		if err != nil {
			log.Printf("scheduler: skipping job %q: invalid stored schedule %q: %v", job.Name, job.ScheduleSpec, err)
			continue
		}
		next := sched.Next(now)
		job.NextRunAt = &next
		entries[job.ID] = &entry{job: job, sched: sched, nextRun: next}
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	log.Printf("scheduler: loaded %d enabled jobs", len(entries))
	return nil
}

// Tick runs one scheduling pass: every job due at the current clock time
// executes synchronously before it returns. Run calls it on each ticker
// fire; callers may invoke it directly to force a pass.
func (s *Scheduler) Tick(ctx context.Context) {
	started := s.clock()
	now := started.UTC()

	due := s.collectDue(now)
	for _, e := range due {
		s.executeJob(ctx, e)
	}

	s.metrics.SchedulerTickCompleted(s.clock().Sub(started), len(due))
}

// collectDue returns the entries whose next run is at or before now,
// ordered by due time (ties broken by name).
func (s *Scheduler) collectDue(now time.Time) []*entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []*entry
	for _, e := range s.entries {
		if !e.nextRun.After(now) {
			due = append(due, e)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].nextRun.Equal(due[j].nextRun) {
			return due[i].nextRun.Before(due[j].nextRun)
		}
		return due[i].job.Name < due[j].job.Name
	})
	return due
}

// executeJob runs one due job through its full lifecycle: open a running
// execution record, invoke the handler, close the record with the
// terminal status, update the definition's run bookkeeping, and dispatch
// the outcome. Failures at any step are logged and contained so the
// remaining due jobs in the tick still run.
func (s *Scheduler) executeJob(ctx context.Context, e *entry) {
	s.mu.Lock()
	current, ok := s.entries[e.job.ID]
	s.mu.Unlock()
	if !ok || current != e {
		// Removed or disabled after this tick collected it.
		return
	}
	job := e.job

	startedAt := s.clock().UTC()
	execID, err := s.store.InsertExecution(ctx, domain.ExecutionRecord{
		JobID:     job.ID,
		StartedAt: startedAt,
		Status:    domain.ExecutionStatusRunning,
	})
	if err != nil {
		// Degraded state: the job still executes, only the history
		// trail is missing this run.
		log.Printf("scheduler: job %q: insert execution: %v", job.Name, err)
		s.metrics.StoreError("insert_execution")
		execID = -1
	}

	result, runErr := s.invokeHandler(ctx, job)

	completedAt := s.clock().UTC()
	status := domain.ExecutionStatusSuccess
	errorMessage := ""
	if runErr != nil {
		status = domain.ExecutionStatusError
		errorMessage = runErr.Error()
		log.Printf("scheduler: job %q failed: %v", job.Name, runErr)
	}

	if execID >= 0 {
		if err := s.store.CompleteExecution(ctx, execID, completedAt, status, result, errorMessage); err != nil {
			log.Printf("scheduler: job %q: complete execution: %v", job.Name, err)
			s.metrics.StoreError("complete_execution")
		}
	}

	next := e.sched.Next(completedAt)
	s.mu.Lock()
	e.nextRun = next
	e.job.LastRunAt = &completedAt
	e.job.NextRunAt = &next
	e.job.RunCount++
	s.mu.Unlock()

	if err := s.store.RecordJobRun(ctx, job.ID, completedAt, next); err != nil {
		log.Printf("scheduler: job %q: record run: %v", job.Name, err)
		s.metrics.StoreError("record_job_run")
	}

	s.metrics.JobExecuted(job.Type, string(status), completedAt.Sub(startedAt))

	payload := result
	if runErr != nil {
		payload, _ = domain.PayloadFrom(map[string]string{"error": errorMessage})
	}
	s.notifier.Dispatch(ctx, domain.NewEvent(job.Name, string(status), payload, completedAt))

	log.Printf("scheduler: job %q completed status=%s", job.Name, status)
}

// invokeHandler looks up and runs the job's handler. A missing handler
// and a panicking handler both surface as ordinary execution errors.
func (s *Scheduler) invokeHandler(ctx context.Context, job domain.JobDefinition) (result domain.Payload, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()

	handler, err := s.registry.Lookup(job.Type)
	if err != nil {
		return nil, err
	}
	return handler(ctx, job.Config)
}
