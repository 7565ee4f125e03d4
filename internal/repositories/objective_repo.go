package repositories

import (
	"context"
	"errors"

	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ObjectiveRepository interface {
	Create(ctx context.Context, objective *models.Objective) error
	CreateOrGet(ctx context.Context, objective *models.Objective) (uuid.UUID, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Objective, error)
	FindByTitle(ctx context.Context, tenantID, areaID uuid.UUID, title string) (uuid.UUID, error)
	Update(ctx context.Context, objective *models.Objective) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Objective, error)
	LinkInitiative(ctx context.Context, tenantID, objectiveID, initiativeID uuid.UUID) error
}

type objectiveRepo struct {
	db Database
}

func NewObjectiveRepo(db Database) ObjectiveRepository {
	return &objectiveRepo{db: db}
}

func (r *objectiveRepo) Create(ctx context.Context, objective *models.Objective) error {
	query := `
		INSERT INTO objectives (id, tenant_id, area_id, title, description, quarter, status, priority, progress, start_date, target_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, objective.ID, objective.TenantID, objective.AreaID, objective.Title, objective.Description, objective.Quarter, objective.Status, objective.Priority, objective.Progress, objective.StartDate, objective.TargetDate, objective.IsActive)
	return err
}

// CreateOrGet inserts the objective or returns the id of the existing row
// with the same case-folded title under the same area. Unique index on
// (tenant_id, area_id, lower(btrim(title))) makes concurrent imports converge
// on one row instead of racing check-then-act.
func (r *objectiveRepo) CreateOrGet(ctx context.Context, objective *models.Objective) (uuid.UUID, error) {
	query := `
		INSERT INTO objectives (id, tenant_id, area_id, title, description, quarter, status, priority, progress, start_date, target_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, TRUE, NOW(), NOW())
		ON CONFLICT (tenant_id, area_id, (LOWER(BTRIM(title)))) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, objective.ID, objective.TenantID, objective.AreaID, objective.Title, objective.Description, objective.Quarter, objective.Status, objective.Priority, objective.Progress, objective.StartDate, objective.TargetDate).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *objectiveRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Objective, error) {
	objective := &models.Objective{}
	query := `
		SELECT id, tenant_id, area_id, title, description, quarter, status, priority, progress, start_date, target_date, is_active, created_at, updated_at
		FROM objectives
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&objective.ID, &objective.TenantID, &objective.AreaID, &objective.Title, &objective.Description, &objective.Quarter, &objective.Status, &objective.Priority, &objective.Progress, &objective.StartDate, &objective.TargetDate, &objective.IsActive, &objective.CreatedAt, &objective.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return objective, nil
}

// FindByTitle matches case-insensitively on the trimmed title within the
// tenant and area. Returns uuid.Nil when no objective matches.
func (r *objectiveRepo) FindByTitle(ctx context.Context, tenantID, areaID uuid.UUID, title string) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM objectives
		WHERE tenant_id = $1 AND area_id = $2 AND LOWER(BTRIM(title)) = LOWER(BTRIM($3)) AND is_active = TRUE
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, tenantID, areaID, title).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *objectiveRepo) Update(ctx context.Context, objective *models.Objective) error {
	query := `
		UPDATE objectives
		SET title = $1, description = $2, quarter = $3, status = $4, priority = $5, progress = $6, start_date = $7, target_date = $8, is_active = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	_, err := r.db.Exec(ctx, query, objective.Title, objective.Description, objective.Quarter, objective.Status, objective.Priority, objective.Progress, objective.StartDate, objective.TargetDate, objective.IsActive, objective.TenantID, objective.ID)
	return err
}

func (r *objectiveRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE objectives SET is_active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *objectiveRepo) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Objective, error) {
	var query string
	var args []any

	if areaID != nil {
		query = `
			SELECT id, tenant_id, area_id, title, description, quarter, status, priority, progress, start_date, target_date, is_active, created_at, updated_at
			FROM objectives
			WHERE tenant_id = $1 AND area_id = $2 AND is_active = TRUE
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4
		`
		args = []any{tenantID, *areaID, limit, offset}
	} else {
		query = `
			SELECT id, tenant_id, area_id, title, description, quarter, status, priority, progress, start_date, target_date, is_active, created_at, updated_at
			FROM objectives
			WHERE tenant_id = $1 AND is_active = TRUE
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`
		args = []any{tenantID, limit, offset}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objectives []*models.Objective
	for rows.Next() {
		objective := &models.Objective{}
		if err := rows.Scan(&objective.ID, &objective.TenantID, &objective.AreaID, &objective.Title, &objective.Description, &objective.Quarter, &objective.Status, &objective.Priority, &objective.Progress, &objective.StartDate, &objective.TargetDate, &objective.IsActive, &objective.CreatedAt, &objective.UpdatedAt); err != nil {
			return nil, err
		}
		objectives = append(objectives, objective)
	}
	return objectives, rows.Err()
}

func (r *objectiveRepo) LinkInitiative(ctx context.Context, tenantID, objectiveID, initiativeID uuid.UUID) error {
	query := `
		INSERT INTO objective_initiatives (objective_id, initiative_id, tenant_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (objective_id, initiative_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, objectiveID, initiativeID, tenantID)
	return err
}
