package background

import (
	"context"
	"log"
	"sync"
	"time"

	"okrhub/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// staleJobCutoff is how long a job may sit in processing before the reaper
// declares its worker dead
const staleJobCutoff = 30 * time.Minute

// JobScheduler manages recurring maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	jobRepo   repositories.ImportJobRepository
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

func NewJobScheduler(jobRepo repositories.ImportJobRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		jobRepo:   jobRepo,
		jobs:      make(map[string]gocron.Job),
	}

	js.registerJobs()
	return js
}

// Start starts the job scheduler
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Stale import reaper - every 10 minutes
	reaperJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.reapStaleImports, context.Background()),
		gocron.WithName("stale-import-reaper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create stale import reaper job: %v", err)
	} else {
		js.jobs["stale-import-reaper"] = reaperJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

// reapStaleImports fails import jobs stuck in processing past the cutoff.
// A job lands here when its worker died between progress updates; failing it
// lets the client re-upload instead of polling forever.
func (js *JobScheduler) reapStaleImports(ctx context.Context) error {
	cutoff := time.Now().Add(-staleJobCutoff)
	reaped, err := js.jobRepo.ReapStale(ctx, cutoff)
	if err != nil {
		log.Printf("Failed to reap stale import jobs: %v", err)
		return err
	}
	if reaped > 0 {
		log.Printf("Reaped %d stale import jobs older than %s", reaped, staleJobCutoff)
	}
	return nil
}

// AddJob adds a custom job to the scheduler
func (js *JobScheduler) AddJob(name string, interval time.Duration, taskFn any, params ...any) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	job, err := js.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(taskFn, params...),
		gocron.WithName(name),
	)
	if err != nil {
		return err
	}

	js.jobs[name] = job
	log.Printf("Added custom job: %s", name)
	return nil
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() map[string]any {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	return map[string]any{
		"total_jobs": len(js.jobs),
		"jobs":       names,
	}
}
