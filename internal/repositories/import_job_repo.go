package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"okrhub/internal/common"
	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ImportJobFilter struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type ImportJobRepository interface {
	Create(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ImportJob, error)
	FindRecentByChecksum(ctx context.Context, tenantID uuid.UUID, checksum string, since time.Time) (*models.ImportJob, error)
	MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error
	UpdateProgress(ctx context.Context, tenantID, id uuid.UUID, processed, success, errorRows int) error
	Finish(ctx context.Context, tenantID, id uuid.UUID, status string, errorSummary *string) error
	List(ctx context.Context, tenantID uuid.UUID, filter *ImportJobFilter) ([]*models.ImportJob, error)
	Stats(ctx context.Context, tenantID uuid.UUID) (*models.ImportStats, error)
	ReapStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type importJobRepo struct {
	db Database
}

func NewImportJobRepo(db Database) ImportJobRepository {
	return &importJobRepo{db: db}
}

const importJobColumns = `id, tenant_id, user_id, filename, object_path, checksum, status, total_rows, processed_rows, success_rows, error_rows, error_summary, started_at, completed_at, created_at, updated_at`

func scanImportJob(row pgx.Row) (*models.ImportJob, error) {
	job := &models.ImportJob{}
	err := row.Scan(&job.ID, &job.TenantID, &job.UserID, &job.Filename, &job.ObjectPath, &job.Checksum, &job.Status, &job.TotalRows, &job.ProcessedRows, &job.SuccessRows, &job.ErrorRows, &job.ErrorSummary, &job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (r *importJobRepo) Create(ctx context.Context, job *models.ImportJob) error {
	query := `
		INSERT INTO import_jobs (id, tenant_id, user_id, filename, object_path, checksum, status, total_rows, processed_rows, success_rows, error_rows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, job.ID, job.TenantID, job.UserID, job.Filename, job.ObjectPath, job.Checksum, job.Status, job.TotalRows)
	return err
}

func (r *importJobRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ImportJob, error) {
	query := `
		SELECT ` + importJobColumns + `
		FROM import_jobs
		WHERE tenant_id = $1 AND id = $2
	`
	return scanImportJob(r.db.QueryRow(ctx, query, tenantID, id))
}

// FindRecentByChecksum returns the newest job for the tenant with the same
// checksum created at or after since, or nil when none exists. Backs the
// 24-hour duplicate suppression.
func (r *importJobRepo) FindRecentByChecksum(ctx context.Context, tenantID uuid.UUID, checksum string, since time.Time) (*models.ImportJob, error) {
	query := `
		SELECT ` + importJobColumns + `
		FROM import_jobs
		WHERE tenant_id = $1 AND checksum = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`
	job, err := scanImportJob(r.db.QueryRow(ctx, query, tenantID, checksum, since))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return job, nil
}

// MarkProcessing moves a pending job to processing. The status predicate in
// the UPDATE is the state-machine guard: a terminal job matches no rows.
func (r *importJobRepo) MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `
		UPDATE import_jobs
		SET status = 'processing', started_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2 AND status IN ('pending', 'processing')
	`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s cannot transition to processing", common.ErrTerminalState, id)
	}
	return nil
}

func (r *importJobRepo) UpdateProgress(ctx context.Context, tenantID, id uuid.UUID, processed, success, errorRows int) error {
	query := `
		UPDATE import_jobs
		SET processed_rows = $1, success_rows = $2, error_rows = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5 AND status = 'processing'
	`
	_, err := r.db.Exec(ctx, query, processed, success, errorRows, tenantID, id)
	return err
}

// Finish moves the job into a terminal state. Attempting to finish an
// already-terminal job is rejected.
func (r *importJobRepo) Finish(ctx context.Context, tenantID, id uuid.UUID, status string, errorSummary *string) error {
	if status != models.JobCompleted && status != models.JobPartial && status != models.JobFailed {
		return fmt.Errorf("%w: %q is not a terminal status", common.ErrValidation, status)
	}
	query := `
		UPDATE import_jobs
		SET status = $1, error_summary = $2, completed_at = NOW(), updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4 AND status IN ('pending', 'processing')
	`
	tag, err := r.db.Exec(ctx, query, status, errorSummary, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: job %s is already finished", common.ErrTerminalState, id)
	}
	return nil
}

func (r *importJobRepo) List(ctx context.Context, tenantID uuid.UUID, filter *ImportJobFilter) ([]*models.ImportJob, error) {
	queryBase := `
		SELECT ` + importJobColumns + `
		FROM import_jobs
		WHERE tenant_id = $1
	`
	args := []any{tenantID}
	conditionCount := 1

	if filter.Status != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND status = $%d`, conditionCount)
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at >= $%d`, conditionCount)
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND created_at <= $%d`, conditionCount)
		args = append(args, *filter.DateTo)
	}

	queryBase += ` ORDER BY created_at DESC`

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	conditionCount++
	queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
	args = append(args, filter.Offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.ImportJob
	for rows.Next() {
		job := &models.ImportJob{}
		if err := rows.Scan(&job.ID, &job.TenantID, &job.UserID, &job.Filename, &job.ObjectPath, &job.Checksum, &job.Status, &job.TotalRows, &job.ProcessedRows, &job.SuccessRows, &job.ErrorRows, &job.ErrorSummary, &job.StartedAt, &job.CompletedAt, &job.CreatedAt, &job.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

func (r *importJobRepo) Stats(ctx context.Context, tenantID uuid.UUID) (*models.ImportStats, error) {
	stats := &models.ImportStats{JobsByStatus: make(map[string]int)}

	query := `
		SELECT status, COUNT(*), COALESCE(SUM(total_rows), 0), COALESCE(SUM(success_rows), 0), COALESCE(SUM(error_rows), 0)
		FROM import_jobs
		WHERE tenant_id = $1
		GROUP BY status
	`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count, totalRows, successRows, errorRows int
		if err := rows.Scan(&status, &count, &totalRows, &successRows, &errorRows); err != nil {
			return nil, err
		}
		stats.JobsByStatus[status] = count
		stats.TotalJobs += count
		stats.TotalRows += totalRows
		stats.TotalSuccess += successRows
		stats.TotalErrors += errorRows
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	topQuery := `
		SELECT i.error_message, COUNT(*)
		FROM import_job_items i
		JOIN import_jobs j ON j.id = i.job_id
		WHERE j.tenant_id = $1 AND i.status = 'error' AND i.error_message IS NOT NULL
		GROUP BY i.error_message
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`
	topRows, err := r.db.Query(ctx, topQuery, tenantID)
	if err != nil {
		return nil, err
	}
	defer topRows.Close()

	for topRows.Next() {
		var entry models.ImportTopError
		if err := topRows.Scan(&entry.Message, &entry.Count); err != nil {
			return nil, err
		}
		stats.TopErrors = append(stats.TopErrors, entry)
	}
	return stats, topRows.Err()
}

// ReapStale fails jobs stuck in processing since before cutoff. Run
// periodically so crashed workers do not leave jobs spinning forever.
func (r *importJobRepo) ReapStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE import_jobs
		SET status = 'failed', error_summary = 'processing timed out', completed_at = NOW(), updated_at = NOW()
		WHERE status = 'processing' AND started_at < $1
	`
	tag, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
