package repositories

import (
	"context"
	"errors"

	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AreaRepository interface {
	Create(ctx context.Context, area *models.Area) error
	CreateOrGet(ctx context.Context, area *models.Area) (uuid.UUID, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Area, error)
	FindByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error)
	Update(ctx context.Context, area *models.Area) error
	SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Area, error)
}

type areaRepo struct {
	db Database
}

func NewAreaRepo(db Database) AreaRepository {
	return &areaRepo{db: db}
}

func (r *areaRepo) Create(ctx context.Context, area *models.Area) error {
	query := `
		INSERT INTO areas (id, tenant_id, name, description, manager_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, area.ID, area.TenantID, area.Name, area.Description, area.ManagerID, area.IsActive)
	return err
}

// CreateOrGet inserts the area or, when another writer got there first,
// returns the id of the row holding the same case-folded name. Relies on the
// unique index on (tenant_id, lower(btrim(name))).
func (r *areaRepo) CreateOrGet(ctx context.Context, area *models.Area) (uuid.UUID, error) {
	query := `
		INSERT INTO areas (id, tenant_id, name, description, manager_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
		ON CONFLICT (tenant_id, (LOWER(BTRIM(name)))) DO UPDATE SET updated_at = NOW()
		RETURNING id
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, area.ID, area.TenantID, area.Name, area.Description, area.ManagerID).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *areaRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Area, error) {
	area := &models.Area{}
	query := `
		SELECT id, tenant_id, name, description, manager_id, is_active, created_at, updated_at
		FROM areas
		WHERE tenant_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&area.ID, &area.TenantID, &area.Name, &area.Description, &area.ManagerID, &area.IsActive, &area.CreatedAt, &area.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return area, nil
}

// FindByName matches case-insensitively on the trimmed name within the
// tenant. Returns uuid.Nil when no area matches.
func (r *areaRepo) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM areas
		WHERE tenant_id = $1 AND LOWER(BTRIM(name)) = LOWER(BTRIM($2)) AND is_active = TRUE
	`
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query, tenantID, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return id, nil
}

func (r *areaRepo) Update(ctx context.Context, area *models.Area) error {
	query := `
		UPDATE areas
		SET name = $1, description = $2, manager_id = $3, is_active = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, area.Name, area.Description, area.ManagerID, area.IsActive, area.TenantID, area.ID)
	return err
}

func (r *areaRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `UPDATE areas SET is_active = FALSE, updated_at = NOW() WHERE tenant_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, tenantID, id)
	return err
}

func (r *areaRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Area, error) {
	query := `
		SELECT id, tenant_id, name, description, manager_id, is_active, created_at, updated_at
		FROM areas
		WHERE tenant_id = $1 AND is_active = TRUE
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*models.Area
	for rows.Next() {
		area := &models.Area{}
		if err := rows.Scan(&area.ID, &area.TenantID, &area.Name, &area.Description, &area.ManagerID, &area.IsActive, &area.CreatedAt, &area.UpdatedAt); err != nil {
			return nil, err
		}
		areas = append(areas, area)
	}
	return areas, rows.Err()
}
