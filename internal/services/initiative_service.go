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

type InitiativeService interface {
	Create(ctx context.Context, tenantID uuid.UUID, initiative *models.Initiative) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Initiative, error)
	Update(ctx context.Context, tenantID uuid.UUID, initiative *models.Initiative) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Initiative, error)
	Activities(ctx context.Context, tenantID, initiativeID uuid.UUID, limit, offset int) ([]*models.Activity, error)
}

type initiativeService struct {
	initiativeRepo repositories.InitiativeRepository
	objectiveRepo  repositories.ObjectiveRepository
	activityRepo   repositories.ActivityRepository
}

func NewInitiativeService(
	initiativeRepo repositories.InitiativeRepository,
	objectiveRepo repositories.ObjectiveRepository,
	activityRepo repositories.ActivityRepository,
) InitiativeService {
	return &initiativeService{
		initiativeRepo: initiativeRepo,
		objectiveRepo:  objectiveRepo,
		activityRepo:   activityRepo,
	}
}

func (s *initiativeService) validate(initiative *models.Initiative) error {
	if err := common.ValidateRequiredString(initiative.Title, "title"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateInitiativeStatus(initiative.Status); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidatePriority(initiative.Priority); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if err := common.ValidateProgress(initiative.Progress, "progress"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if initiative.Budget != nil && *initiative.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", common.ErrValidation)
	}
	if initiative.ActualCost != nil && *initiative.ActualCost < 0 {
		return fmt.Errorf("%w: actual cost cannot be negative", common.ErrValidation)
	}
	return nil
}

func (s *initiativeService) Create(ctx context.Context, tenantID uuid.UUID, initiative *models.Initiative) error {
	if initiative.Status == "" {
		initiative.Status = models.StatusPlanning
	}
	if initiative.Priority == "" {
		initiative.Priority = models.PriorityMedium
	}
	if err := s.validate(initiative); err != nil {
		return err
	}

	objective, err := s.objectiveRepo.GetByID(ctx, tenantID, initiative.ObjectiveID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: objective %s", common.ErrNotFound, initiative.ObjectiveID)
		}
		return err
	}

	if err := authorizeArea(ctx, objective.AreaID); err != nil {
		return err
	}

	initiative.ID = uuid.New()
	initiative.TenantID = tenantID
	initiative.AreaID = objective.AreaID
	initiative.IsActive = true
	if err := s.initiativeRepo.Create(ctx, initiative); err != nil {
		return err
	}
	return s.objectiveRepo.LinkInitiative(ctx, tenantID, initiative.ObjectiveID, initiative.ID)
}

func (s *initiativeService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Initiative, error) {
	initiative, err := s.initiativeRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: initiative %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return initiative, nil
}

func (s *initiativeService) Update(ctx context.Context, tenantID uuid.UUID, initiative *models.Initiative) error {
	if err := authorizeArea(ctx, initiative.AreaID); err != nil {
		return err
	}
	if err := s.validate(initiative); err != nil {
		return err
	}
	initiative.TenantID = tenantID
	return s.initiativeRepo.Update(ctx, initiative)
}

func (s *initiativeService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	initiative, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := authorizeArea(ctx, initiative.AreaID); err != nil {
		return err
	}
	return s.initiativeRepo.SoftDelete(ctx, tenantID, id)
}

func (s *initiativeService) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Initiative, error) {
	return s.initiativeRepo.List(ctx, tenantID, areaID, limit, offset)
}

func (s *initiativeService) Activities(ctx context.Context, tenantID, initiativeID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	if _, err := s.GetByID(ctx, tenantID, initiativeID); err != nil {
		return nil, err
	}
	return s.activityRepo.ListByInitiative(ctx, tenantID, initiativeID, limit, offset)
}
