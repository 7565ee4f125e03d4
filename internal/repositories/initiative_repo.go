package repositories

import (
	"context"
	"errors"

	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InitiativeRepository interface {
	Create(ctx context.Context, initiative *models.Initiative) error
	CreateOrGet(ctx context.Context, initiative *models.Initiative) (uuid.UUID, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Initiative, error)
	FindByTitle(ctx context.Context, tenantID, objectiveID uuid.UUID, title string) (uuid.UUID, error)
	Update(ctx context.Context, initiative *models.Initiative) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Initiative, error)
	ListByObjective(ctx context.Context, tenantID, objectiveID uuid.UUID) ([]*models.Initiative, error)
	AreaKPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error)
	TenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error)
}

type initiativeRepo struct {
	db Database
}

func NewInitiativeRepo(db Database) InitiativeRepository {
	return &initiativeRepo{db: db}
}

func (r *initiativeRepo) Create(ctx context.Context, initiative *models.Initiative) error {
	query := `
		INSERT INTO initiatives (id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, initiative.ID, initiative.TenantID, initiative.AreaID, initiative.ObjectiveID, initiative.Title, initiative.Description, initiative.Status, initiative.Priority, initiative.Progress, initiative.Budget, initiative.ActualCost, initiative.StartDate, initiative.TargetDate, initiative.IsActive)
	return err
}

// CreateOrGet inserts the initiative or returns the existing id for the same
// case-folded title under the same objective. Title uniqueness is scoped to
// the parent objective, never global.
func (r *initiativeRepo) CreateOrGet(ctx context.Context, initiative *models.Initiative) (uuid.UUID, error) {
	query := `
		INSERT INTO initiatives (id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, TRUE, NOW(), NOW())
		ON CONFLICT (tenant_id, objective_id, (LOWER(BTRIM(title)))) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, initiative.ID, initiative.TenantID, initiative.AreaID, initiative.ObjectiveID, initiative.Title, initiative.Description, initiative.Status, initiative.Priority, initiative.Progress, initiative.Budget, initiative.ActualCost, initiative.StartDate, initiative.TargetDate).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *initiativeRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Initiative, error) {
	initiative := &models.Initiative{}
	query := `
		SELECT id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at
		FROM initiatives
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&initiative.ID, &initiative.TenantID, &initiative.AreaID, &initiative.ObjectiveID, &initiative.Title, &initiative.Description, &initiative.Status, &initiative.Priority, &initiative.Progress, &initiative.Budget, &initiative.ActualCost, &initiative.StartDate, &initiative.TargetDate, &initiative.IsActive, &initiative.CreatedAt, &initiative.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return initiative, nil
}

// FindByTitle matches case-insensitively on the trimmed title within the
// tenant and parent objective. Returns uuid.Nil when nothing matches.
func (r *initiativeRepo) FindByTitle(ctx context.Context, tenantID, objectiveID uuid.UUID, title string) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM initiatives
		WHERE tenant_id = $1 AND objective_id = $2 AND LOWER(BTRIM(title)) = LOWER(BTRIM($3)) AND is_active = TRUE
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, tenantID, objectiveID, title).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *initiativeRepo) Update(ctx context.Context, initiative *models.Initiative) error {
	query := `
		UPDATE initiatives
		SET title = $1, description = $2, status = $3, priority = $4, progress = $5, budget = $6, actual_cost = $7, start_date = $8, target_date = $9, is_active = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	_, err := r.db.Exec(ctx, query, initiative.Title, initiative.Description, initiative.Status, initiative.Priority, initiative.Progress, initiative.Budget, initiative.ActualCost, initiative.StartDate, initiative.TargetDate, initiative.IsActive, initiative.TenantID, initiative.ID)
	return err
}

func (r *initiativeRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE initiatives SET is_active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *initiativeRepo) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Initiative, error) {
	var query string
	var args []any

	if areaID != nil {
		query = `
			SELECT id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at
			FROM initiatives
			WHERE tenant_id = $1 AND area_id = $2 AND is_active = TRUE
			ORDER BY created_at DESC
			LIMIT $3 OFFSET $4
		`
		args = []any{tenantID, *areaID, limit, offset}
	} else {
		query = `
			SELECT id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at
			FROM initiatives
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

	return scanInitiatives(rows)
}

func (r *initiativeRepo) ListByObjective(ctx context.Context, tenantID, objectiveID uuid.UUID) ([]*models.Initiative, error) {
	query := `
		SELECT id, tenant_id, area_id, objective_id, title, description, status, priority, progress, budget, actual_cost, start_date, target_date, is_active, created_at, updated_at
		FROM initiatives
		WHERE tenant_id = $1 AND objective_id = $2 AND is_active = TRUE
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, objectiveID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInitiatives(rows)
}

func scanInitiatives(rows pgx.Rows) ([]*models.Initiative, error) {
	var initiatives []*models.Initiative
	for rows.Next() {
		initiative := &models.Initiative{}
		if err := rows.Scan(&initiative.ID, &initiative.TenantID, &initiative.AreaID, &initiative.ObjectiveID, &initiative.Title, &initiative.Description, &initiative.Status, &initiative.Priority, &initiative.Progress, &initiative.Budget, &initiative.ActualCost, &initiative.StartDate, &initiative.TargetDate, &initiative.IsActive, &initiative.CreatedAt, &initiative.UpdatedAt); err != nil {
			return nil, err
		}
		initiatives = append(initiatives, initiative)
	}
	return initiatives, rows.Err()
}

func (r *initiativeRepo) AreaKPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error) {
	kpis := &models.AreaKPIs{AreaID: areaID}
	query := `
		SELECT a.name,
			COUNT(i.id),
			COUNT(i.id) FILTER (WHERE i.status = 'completed'),
			COALESCE(AVG(i.progress), 0),
			COALESCE(SUM(i.budget), 0),
			COALESCE(SUM(i.actual_cost), 0)
		FROM areas a
		LEFT JOIN initiatives i ON i.area_id = a.id AND i.tenant_id = a.tenant_id AND i.is_active = TRUE
		WHERE a.tenant_id = $1 AND a.id = $2
		GROUP BY a.id, a.name
	`
	err := r.db.QueryRow(ctx, query, tenantID, areaID).Scan(&kpis.AreaName, &kpis.TotalInitiatives, &kpis.CompletedInitiatives, &kpis.AvgProgress, &kpis.TotalBudget, &kpis.TotalSpent)
	if err != nil {
		return nil, err
	}
	if kpis.TotalBudget > 0 {
		kpis.BudgetEfficiency = (kpis.TotalBudget - kpis.TotalSpent) / kpis.TotalBudget * 100
	} else {
		kpis.BudgetEfficiency = 100
	}
	return kpis, nil
}

func (r *initiativeRepo) TenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error) {
	query := `
		SELECT COUNT(i.id),
			COUNT(i.id) FILTER (WHERE i.status = 'completed'),
			COALESCE(AVG(i.progress), 0),
			COALESCE(SUM(i.budget), 0),
			COALESCE(SUM(i.actual_cost), 0),
			(SELECT COUNT(*) FROM areas WHERE tenant_id = $1 AND is_active = TRUE)
		FROM initiatives i
		WHERE i.tenant_id = $1 AND i.is_active = TRUE
	`
	var totalInitiatives, completed, totalAreas int
	var avgProgress, totalBudget, totalSpent float64
	err := r.db.QueryRow(ctx, query, tenantID).Scan(&totalInitiatives, &completed, &avgProgress, &totalBudget, &totalSpent, &totalAreas)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"total_initiatives":     totalInitiatives,
		"completed_initiatives": completed,
		"avg_progress":          avgProgress,
		"total_areas":           totalAreas,
		"total_budget":          totalBudget,
		"total_spent":           totalSpent,
	}, nil
}
