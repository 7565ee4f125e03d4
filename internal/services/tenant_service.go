package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type TenantService interface {
	Create(ctx context.Context, tenant *models.Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error)
	Update(ctx context.Context, tenant *models.Tenant) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Tenant, error)
}

type tenantService struct {
	tenantRepo repositories.TenantRepository
}

func NewTenantService(tenantRepo repositories.TenantRepository) TenantService {
	return &tenantService{tenantRepo: tenantRepo}
}

func (s *tenantService) Create(ctx context.Context, tenant *models.Tenant) error {
	if err := common.ValidateRequiredString(tenant.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	tenant.Subdomain = strings.ToLower(strings.TrimSpace(tenant.Subdomain))
	if err := common.ValidateRequiredString(tenant.Subdomain, "subdomain"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	existing, err := s.tenantRepo.GetBySubdomain(ctx, tenant.Subdomain)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: subdomain %q is taken", common.ErrConflict, tenant.Subdomain)
	}

	tenant.ID = uuid.New()
	tenant.Status = "active"
	return s.tenantRepo.Create(ctx, tenant)
}

func (s *tenantService) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tenant %s", common.ErrNotFound, id)
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetBySubdomain(ctx, strings.ToLower(strings.TrimSpace(subdomain)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: tenant %q", common.ErrNotFound, subdomain)
		}
		return nil, err
	}
	return tenant, nil
}

func (s *tenantService) Update(ctx context.Context, tenant *models.Tenant) error {
	if err := common.ValidateRequiredString(tenant.Name, "name"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return s.tenantRepo.Update(ctx, tenant)
}

func (s *tenantService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tenantRepo.Deactivate(ctx, id)
}

func (s *tenantService) List(ctx context.Context, limit, offset int) ([]*models.Tenant, error) {
	return s.tenantRepo.List(ctx, limit, offset)
}
