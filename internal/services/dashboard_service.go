package services

import (
	"context"
	"log"
	"time"

	"okrhub/internal/caching"
	"okrhub/internal/models"
	"okrhub/internal/repositories"

	"github.com/google/uuid"
)

// summaryTTL keeps dashboard reads off the database between imports; the
// import pipeline invalidates the cache when it changes entities
const summaryTTL = 5 * time.Minute

// DashboardService aggregates the tenant-wide and per-area progress views
type DashboardService interface {
	Summary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error)
	AreaKPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error)
}

type dashboardService struct {
	initiativeRepo repositories.InitiativeRepository
	areaService    AreaService
	cache          caching.CacheService
}

func NewDashboardService(initiativeRepo repositories.InitiativeRepository, areaService AreaService, cache caching.CacheService) DashboardService {
	return &dashboardService{
		initiativeRepo: initiativeRepo,
		areaService:    areaService,
		cache:          cache,
	}
}

func (s *dashboardService) Summary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error) {
	if cached, err := s.cache.GetTenantSummary(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}

	summary, err := s.initiativeRepo.TenantSummary(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetTenantSummary(ctx, tenantID, summary, summaryTTL); err != nil {
		log.Printf("WARN: failed to cache dashboard summary for tenant %s: %v", tenantID, err)
	}
	return summary, nil
}

func (s *dashboardService) AreaKPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error) {
	return s.areaService.KPIs(ctx, tenantID, areaID)
}
