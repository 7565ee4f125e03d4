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

type ObjectiveService interface {
	Create(ctx context.Context, tenantID uuid.UUID, objective *models.Objective) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Objective, error)
	Update(ctx context.Context, tenantID uuid.UUID, objective *models.Objective) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Objective, error)
	Initiatives(ctx context.Context, tenantID, objectiveID uuid.UUID) ([]*models.Initiative, error)
}

type objectiveService struct {
	objectiveRepo  repositories.ObjectiveRepository
	areaRepo       repositories.AreaRepository
	initiativeRepo repositories.InitiativeRepository
}

func NewObjectiveService(
	objectiveRepo repositories.ObjectiveRepository,
	areaRepo repositories.AreaRepository,
	initiativeRepo repositories.InitiativeRepository,
) ObjectiveService {
	return &objectiveService{
		objectiveRepo:  objectiveRepo,
		areaRepo:       areaRepo,
		initiativeRepo: initiativeRepo,
	}
}

func (s *objectiveService) validate(objective *models.Objective) error {
	if err := common.ValidateRequiredString(objective.Title, "title"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateObjectiveStatus(objective.Status); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidatePriority(objective.Priority); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateProgress(objective.Progress, "progress"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

func (s *objectiveService) Create(ctx context.Context, tenantID uuid.UUID, objective *models.Objective) error {
	if objective.Status == "" {
		objective.Status = models.StatusPlanning
	}
	if objective.Priority == "" {
		objective.Priority = models.PriorityMedium
	}
	if err := s.validate(objective); err != nil {
		return err
	}

	// The area must exist and be visible to the tenant
	if _, err := s.areaRepo.GetByID(ctx, tenantID, objective.AreaID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: area %s", common.ErrNotFound, objective.AreaID)
		}
		return err
	}
	if err := authorizeArea(ctx, objective.AreaID); err != nil {
		return err
	}

	objective.ID = uuid.New()
	objective.TenantID = tenantID
	objective.IsActive = true
	return s.objectiveRepo.Create(ctx, objective)
}

func (s *objectiveService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Objective, error) {
	objective, err := s.objectiveRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: objective %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return objective, nil
}

func (s *objectiveService) Update(ctx context.Context, tenantID uuid.UUID, objective *models.Objective) error {
	if err := authorizeArea(ctx, objective.AreaID); err != nil {
		return err
	}
	if err := s.validate(objective); err != nil {
		return err
	}
	objective.TenantID = tenantID
	return s.objectiveRepo.Update(ctx, objective)
}

func (s *objectiveService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	objective, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := authorizeArea(ctx, objective.AreaID); err != nil {
		return err
	}
	return s.objectiveRepo.SoftDelete(ctx, tenantID, id)
}

func (s *objectiveService) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Objective, error) {
	return s.objectiveRepo.List(ctx, tenantID, areaID, limit, offset)
}

func (s *objectiveService) Initiatives(ctx context.Context, tenantID, objectiveID uuid.UUID) ([]*models.Initiative, error) {
	if _, err := s.GetByID(ctx, tenantID, objectiveID); err != nil {
		return nil, err
	}
	return s.initiativeRepo.ListByObjective(ctx, tenantID, objectiveID)
}
