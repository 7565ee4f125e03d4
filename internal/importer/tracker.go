package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"okrhub/internal/caching"
	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"
)

// Tracker serves the read side of import jobs: progress, per-row outcomes
// and tenant history. Counts are best effort while a job runs so a client
// can render a progress bar before completion.
type Tracker struct {
	jobs  repositories.ImportJobRepository
	items repositories.ImportJobItemRepository
	cache caching.CacheService
}

func NewTracker(jobs repositories.ImportJobRepository, items repositories.ImportJobItemRepository, cache caching.CacheService) *Tracker {
	return &Tracker{jobs: jobs, items: items, cache: cache}
}

// Summarize computes the derived progress view for a job. ETA is a linear
// extrapolation of elapsed time over rows processed so far; it is nil until
// at least one row has been processed.
func Summarize(job *models.ImportJob) *models.ImportJobSummary {
	summary := &models.ImportJobSummary{Job: job}

	if job.TotalRows > 0 {
		summary.Progress = float64(job.ProcessedRows) / float64(job.TotalRows) * 100
	}
	if job.Status == models.JobProcessing && job.ProcessedRows > 0 && job.StartedAt != nil {
		elapsed := time.Since(*job.StartedAt).Seconds()
		remaining := job.TotalRows - job.ProcessedRows
		eta := int64(elapsed / float64(job.ProcessedRows) * float64(remaining))
		summary.ETASeconds = &eta
	}
	return summary
}

// GetStatus returns the job summary. While a job is processing the cached
// snapshot written by the worker is preferred, so polling does not hammer
// the database across instances.
func (t *Tracker) GetStatus(ctx context.Context, tenantID, jobID uuid.UUID) (*models.ImportJobSummary, error) {
	if cached, err := t.cache.GetJobSummary(ctx, tenantID, jobID); err == nil && cached != nil {
		return cached, nil
	}

	job, err := t.jobs.GetByID(ctx, tenantID, jobID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: import job %s", common.ErrNotFound, jobID)
		}
		return nil, err
	}
	return Summarize(job), nil
}

// ListItems returns the paginated per-row outcomes of a job after verifying
// tenant ownership.
func (t *Tracker) ListItems(ctx context.Context, tenantID, jobID uuid.UUID, limit, offset int) ([]*models.ImportJobItem, int, error) {
	if _, err := t.jobs.GetByID(ctx, tenantID, jobID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("%w: import job %s", common.ErrNotFound, jobID)
		}
		return nil, 0, err
	}

	items, err := t.items.ListByJob(ctx, jobID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := t.items.CountByJob(ctx, jobID)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListJobs returns the tenant's upload history with optional status and date
// filters.
func (t *Tracker) ListJobs(ctx context.Context, tenantID uuid.UUID, filter *repositories.ImportJobFilter) ([]*models.ImportJob, error) {
	if filter.Status != "" {
		if err := common.ValidateJobStatus(filter.Status); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
	}
	return t.jobs.List(ctx, tenantID, filter)
}

// Stats returns the aggregated upload statistics for the tenant
func (t *Tracker) Stats(ctx context.Context, tenantID uuid.UUID) (*models.ImportStats, error) {
	return t.jobs.Stats(ctx, tenantID)
}
