package importer

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"okrhub/internal/caching"
	"okrhub/internal/models"
	"okrhub/internal/repositories"
	"okrhub/internal/services"
)

const (
	// batchSize bounds memory and sets the progress reporting granularity
	batchSize = 100
	// summaryCacheTTL keeps progress snapshots readable across instances
	summaryCacheTTL = 10 * time.Minute
)

// Runner drives one import job from pending to a terminal state. Rows are
// processed in file order because later rows may reference entities created
// by earlier rows of the same file.
type Runner struct {
	processor *RowProcessor
	jobs      repositories.ImportJobRepository
	items     repositories.ImportJobItemRepository
	storage   services.StorageService
	cache     caching.CacheService
	bucket    string
}

func NewRunner(
	processor *RowProcessor,
	jobs repositories.ImportJobRepository,
	items repositories.ImportJobItemRepository,
	storage services.StorageService,
	cache caching.CacheService,
	bucket string,
) *Runner {
	return &Runner{
		processor: processor,
		jobs:      jobs,
		items:     items,
		storage:   storage,
		cache:     cache,
		bucket:    bucket,
	}
}

// Run processes the job. A nil return means the job reached a terminal
// state; a non-nil return means a systemic failure that the caller may
// retry. Replays are safe: finished jobs are skipped, row outcomes insert
// with conflict suppression and entity writes are upserts.
func (r *Runner) Run(ctx context.Context, tenantID, jobID uuid.UUID) error {
	job, err := r.jobs.GetByID(ctx, tenantID, jobID)
	if err != nil {
		return fmt.Errorf("load job %s: %w", jobID, err)
	}
	if job.IsTerminal() {
		log.Printf("import job %s already finished with status %s, skipping", jobID, job.Status)
		return nil
	}

	if err := r.jobs.MarkProcessing(ctx, tenantID, jobID); err != nil {
		return err
	}

	obj, _, err := r.storage.GetObject(ctx, r.bucket, job.ObjectPath)
	if err != nil {
		return r.failJob(ctx, job, fmt.Sprintf("failed to download %s: %v", job.ObjectPath, err))
	}
	data, err := io.ReadAll(io.LimitReader(obj, MaxUploadBytes+1))
	obj.Close()
	if err != nil {
		return r.failJob(ctx, job, fmt.Sprintf("failed to read %s: %v", job.ObjectPath, err))
	}

	rows, err := ParseFile(job.Filename, data)
	if err != nil {
		return r.failJob(ctx, job, err.Error())
	}

	var processed, success, errorRows int
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		for _, row := range rows[start:end] {
			items, procErr := r.processor.Process(ctx, tenantID, jobID, row)
			for _, item := range items {
				if insertErr := r.items.Insert(ctx, item); insertErr != nil {
					return fmt.Errorf("record row %d outcome: %w", row.Number, insertErr)
				}
			}
			if procErr != nil {
				// Systemic failure. Leave the job in processing so a retry
				// can resume; the caller decides when to give up.
				_ = r.jobs.UpdateProgress(ctx, tenantID, jobID, processed, success, errorRows)
				return fmt.Errorf("row %d: %w", row.Number, procErr)
			}

			processed++
			if rowFailed(items) {
				errorRows++
			} else {
				success++
			}
		}

		if err := r.jobs.UpdateProgress(ctx, tenantID, jobID, processed, success, errorRows); err != nil {
			return err
		}
		r.cacheProgress(ctx, job, processed, success, errorRows)
	}

	status := models.JobCompleted
	if errorRows > 0 {
		status = models.JobPartial
	}
	var summary *string
	if errorRows > 0 {
		msg := fmt.Sprintf("%d of %d rows failed", errorRows, processed)
		summary = &msg
	}
	if err := r.jobs.Finish(ctx, tenantID, jobID, status, summary); err != nil {
		return err
	}
	if success > 0 {
		if err := r.cache.InvalidateTenantCache(ctx, tenantID); err != nil {
			log.Printf("WARN: failed to invalidate dashboard cache for tenant %s: %v", tenantID, err)
		}
	}
	r.release(ctx, tenantID, jobID)
	r.removeUpload(ctx, job)
	return nil
}

// Fail marks the job failed with the given summary. Used by callers that have
// exhausted retries.
func (r *Runner) Fail(ctx context.Context, tenantID, jobID uuid.UUID, summary string) error {
	err := r.jobs.Finish(ctx, tenantID, jobID, models.JobFailed, &summary)
	r.release(ctx, tenantID, jobID)
	return err
}

func (r *Runner) failJob(ctx context.Context, job *models.ImportJob, summary string) error {
	if err := r.jobs.Finish(ctx, job.TenantID, job.ID, models.JobFailed, &summary); err != nil {
		return err
	}
	r.release(ctx, job.TenantID, job.ID)
	r.removeUpload(ctx, job)
	return nil
}

// removeUpload deletes the uploaded object once the job is terminal. The
// checksum kept on the job record is what duplicate suppression reads, so the
// bytes themselves are no longer needed.
func (r *Runner) removeUpload(ctx context.Context, job *models.ImportJob) {
	if err := r.storage.RemoveObject(ctx, r.bucket, job.ObjectPath); err != nil {
		log.Printf("WARN: failed to remove uploaded object %s: %v", job.ObjectPath, err)
	}
}

func (r *Runner) release(ctx context.Context, tenantID, jobID uuid.UUID) {
	if err := r.cache.ReleaseImportSlot(ctx, tenantID); err != nil {
		log.Printf("WARN: failed to release import slot for tenant %s: %v", tenantID, err)
	}
	if err := r.cache.DeleteJobSummary(ctx, tenantID, jobID); err != nil {
		log.Printf("WARN: failed to drop cached summary for job %s: %v", jobID, err)
	}
}

func (r *Runner) cacheProgress(ctx context.Context, job *models.ImportJob, processed, success, errorRows int) {
	snapshot := *job
	snapshot.Status = models.JobProcessing
	snapshot.ProcessedRows = processed
	snapshot.SuccessRows = success
	snapshot.ErrorRows = errorRows
	summary := Summarize(&snapshot)
	if err := r.cache.SetJobSummary(ctx, job.TenantID, summary, summaryCacheTTL); err != nil {
		log.Printf("WARN: failed to cache progress for job %s: %v", job.ID, err)
	}
}

// rowFailed reports whether any entity of the row ended in error
func rowFailed(items []*models.ImportJobItem) bool {
	for _, item := range items {
		if item.Status == models.ItemError {
			return true
		}
	}
	return false
}
