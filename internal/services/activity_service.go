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

type ActivityService interface {
	Create(ctx context.Context, tenantID uuid.UUID, activity *models.Activity) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Activity, error)
	Update(ctx context.Context, tenantID uuid.UUID, activity *models.Activity) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type activityService struct {
	activityRepo   repositories.ActivityRepository
	initiativeRepo repositories.InitiativeRepository
	userRepo       repositories.UserRepository
}

func NewActivityService(
	activityRepo repositories.ActivityRepository,
	initiativeRepo repositories.InitiativeRepository,
	userRepo repositories.UserRepository,
) ActivityService {
	return &activityService{
		activityRepo:   activityRepo,
		initiativeRepo: initiativeRepo,
		userRepo:       userRepo,
	}
}

func (s *activityService) validate(ctx context.Context, tenantID uuid.UUID, activity *models.Activity) error {
	if err := common.ValidateRequiredString(activity.Title, "title"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	if activity.AssignedTo != nil {
		if _, err := s.userRepo.GetByID(ctx, tenantID, *activity.AssignedTo); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: assignee %s", common.ErrNotFound, *activity.AssignedTo)
			}
			return err
		}
	}
	return nil
}

func (s *activityService) Create(ctx context.Context, tenantID uuid.UUID, activity *models.Activity) error {
	if err := s.validate(ctx, tenantID, activity); err != nil {
		return err
	}

	initiative, err := s.initiativeRepo.GetByID(ctx, tenantID, activity.InitiativeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: initiative %s", common.ErrNotFound, activity.InitiativeID)
		}
		return err
	}
	if err := authorizeArea(ctx, initiative.AreaID); err != nil {
		return err
	}

	activity.ID = uuid.New()
	activity.TenantID = tenantID
	activity.IsActive = true
	return s.activityRepo.Create(ctx, activity)
}

func (s *activityService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Activity, error) {
	activity, err := s.activityRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: activity %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return activity, nil
}

func (s *activityService) Update(ctx context.Context, tenantID uuid.UUID, activity *models.Activity) error {
	if err := s.validate(ctx, tenantID, activity); err != nil {
		return err
	}
	if err := s.authorizeViaInitiative(ctx, tenantID, activity.InitiativeID); err != nil {
		return err
	}
	activity.TenantID = tenantID
	return s.activityRepo.Update(ctx, activity)
}

// authorizeViaInitiative resolves the activity's area through its parent
// initiative before the capability check
func (s *activityService) authorizeViaInitiative(ctx context.Context, tenantID, initiativeID uuid.UUID) error {
	initiative, err := s.initiativeRepo.GetByID(ctx, tenantID, initiativeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: initiative %s", common.ErrNotFound, initiativeID)
		}
		return err
	}
	return authorizeArea(ctx, initiative.AreaID)
}

func (s *activityService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	activity, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.authorizeViaInitiative(ctx, tenantID, activity.InitiativeID); err != nil {
		return err
	}
	return s.activityRepo.SoftDelete(ctx, tenantID, id)
}
