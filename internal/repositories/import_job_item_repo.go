package repositories

import (
	"context"

	"okrhub/internal/models"

	"github.com/google/uuid"
)

type ImportJobItemRepository interface {
	Insert(ctx context.Context, item *models.ImportJobItem) error
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*models.ImportJobItem, error)
	CountByJob(ctx context.Context, jobID uuid.UUID) (int, error)
}

type importJobItemRepo struct {
	db Database
}

func NewImportJobItemRepo(db Database) ImportJobItemRepository {
	return &importJobItemRepo{db: db}
}

// Insert records one row outcome. The conflict target makes batch replays
// after a transient failure idempotent: a re-processed row does not produce a
// second item.
func (r *importJobItemRepo) Insert(ctx context.Context, item *models.ImportJobItem) error {
	query := `
		INSERT INTO import_job_items (id, job_id, row_number, entity_type, entity_title, action, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (job_id, row_number, entity_type) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.JobID, item.RowNumber, item.EntityType, item.EntityTitle, item.Action, item.Status, item.ErrorMessage)
	return err
}

func (r *importJobItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*models.ImportJobItem, error) {
	query := `
		SELECT id, job_id, row_number, entity_type, entity_title, action, status, error_message, created_at
		FROM import_job_items
		WHERE job_id = $1
		ORDER BY row_number, entity_type
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ImportJobItem
	for rows.Next() {
		item := &models.ImportJobItem{}
		if err := rows.Scan(&item.ID, &item.JobID, &item.RowNumber, &item.EntityType, &item.EntityTitle, &item.Action, &item.Status, &item.ErrorMessage, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *importJobItemRepo) CountByJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM import_job_items WHERE job_id = $1`, jobID).Scan(&count)
	return count, err
}
