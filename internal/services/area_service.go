package services

import (
	"context"
	"errors"
	"fmt"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AreaService interface {
	Create(ctx context.Context, tenantID uuid.UUID, area *models.Area) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Area, error)
	Update(ctx context.Context, tenantID uuid.UUID, area *models.Area) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Area, error)
	KPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error)
}

type areaService struct {
	areaRepo       repositories.AreaRepository
	initiativeRepo repositories.InitiativeRepository
}

func NewAreaService(areaRepo repositories.AreaRepository, initiativeRepo repositories.InitiativeRepository) AreaService {
	return &areaService{
		areaRepo:       areaRepo,
		initiativeRepo: initiativeRepo,
	}
}

func (s *areaService) Create(ctx context.Context, tenantID uuid.UUID, area *models.Area) error {
	if err := authorizeAllAreas(ctx); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(area.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	// Duplicate names collapse into the existing row, same as during imports
	existing, err := s.areaRepo.FindByName(ctx, tenantID, area.Name)
	if err != nil {
		return err
	}
	if existing != uuid.Nil {
		return fmt.Errorf("%w: area %q already exists", common.ErrConflict, area.Name)
	}

	area.ID = uuid.New()
	area.TenantID = tenantID
	area.IsActive = true
	return s.areaRepo.Create(ctx, area)
}

func (s *areaService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Area, error) {
	area, err := s.areaRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: area %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return area, nil
}

func (s *areaService) Update(ctx context.Context, tenantID uuid.UUID, area *models.Area) error {
	if err := authorizeArea(ctx, area.ID); err != nil {
		return err
	}
	if err := common.ValidateRequiredString(area.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	area.TenantID = tenantID
	return s.areaRepo.Update(ctx, area)
}

func (s *areaService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := authorizeAllAreas(ctx); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, tenantID, id); err != nil {
		return err
	}
	return s.areaRepo.SoftDelete(ctx, tenantID, id)
}

func (s *areaService) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Area, error) {
	return s.areaRepo.List(ctx, tenantID, limit, offset)
}

func (s *areaService) KPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error) {
	if _, err := s.GetByID(ctx, tenantID, areaID); err != nil {
		return nil, err
	}
	return s.initiativeRepo.AreaKPIs(ctx, tenantID, areaID)
}
