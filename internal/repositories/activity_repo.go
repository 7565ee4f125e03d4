package repositories

import (
	"context"
	"errors"

	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	CreateOrGet(ctx context.Context, activity *models.Activity) (uuid.UUID, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Activity, error)
	FindByTitle(ctx context.Context, tenantID, initiativeID uuid.UUID, title string) (uuid.UUID, error)
	Update(ctx context.Context, activity *models.Activity) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	ListByInitiative(ctx context.Context, tenantID, initiativeID uuid.UUID, limit, offset int) ([]*models.Activity, error)
}

type activityRepo struct {
	db Database
}

func NewActivityRepo(db Database) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *models.Activity) error {
	query := `
		INSERT INTO activities (id, tenant_id, initiative_id, title, is_completed, assigned_to, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, activity.ID, activity.TenantID, activity.InitiativeID, activity.Title, activity.IsCompleted, activity.AssignedTo, activity.IsActive)
	return err
}

// CreateOrGet inserts the activity or returns the existing id for the same
// case-folded title under the same initiative.
func (r *activityRepo) CreateOrGet(ctx context.Context, activity *models.Activity) (uuid.UUID, error) {
	query := `
		INSERT INTO activities (id, tenant_id, initiative_id, title, is_completed, assigned_to, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
		ON CONFLICT (tenant_id, initiative_id, (LOWER(BTRIM(title)))) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, activity.ID, activity.TenantID, activity.InitiativeID, activity.Title, activity.IsCompleted, activity.AssignedTo).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *activityRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Activity, error) {
	activity := &models.Activity{}
	query := `
		SELECT id, tenant_id, initiative_id, title, is_completed, assigned_to, is_active, created_at, updated_at
		FROM activities
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&activity.ID, &activity.TenantID, &activity.InitiativeID, &activity.Title, &activity.IsCompleted, &activity.AssignedTo, &activity.IsActive, &activity.CreatedAt, &activity.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return activity, nil
}

func (r *activityRepo) FindByTitle(ctx context.Context, tenantID, initiativeID uuid.UUID, title string) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM activities
		WHERE tenant_id = $1 AND initiative_id = $2 AND LOWER(BTRIM(title)) = LOWER(BTRIM($3)) AND is_active = TRUE
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, tenantID, initiativeID, title).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *activityRepo) Update(ctx context.Context, activity *models.Activity) error {
	query := `
		UPDATE activities
		SET title = $1, is_completed = $2, assigned_to = $3, is_active = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, activity.Title, activity.IsCompleted, activity.AssignedTo, activity.IsActive, activity.TenantID, activity.ID)
	return err
}

func (r *activityRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE activities SET is_active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *activityRepo) ListByInitiative(ctx context.Context, tenantID, initiativeID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	query := `
		SELECT id, tenant_id, initiative_id, title, is_completed, assigned_to, is_active, created_at, updated_at
		FROM activities
		WHERE tenant_id = $1 AND initiative_id = $2 AND is_active = TRUE
		ORDER BY created_at
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, tenantID, initiativeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*models.Activity
	for rows.Next() {
		activity := &models.Activity{}
		if err := rows.Scan(&activity.ID, &activity.TenantID, &activity.InitiativeID, &activity.Title, &activity.IsCompleted, &activity.AssignedTo, &activity.IsActive, &activity.CreatedAt, &activity.UpdatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}
