package models

import (
	"time"

	"github.com/google/uuid"
)

type Area struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description,omitempty" db:"description"`
	ManagerID   *uuid.UUID `json:"manager_id,omitempty" db:"manager_id"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// AreaKPIs is the per-area aggregation served by the dashboard
type AreaKPIs struct {
	AreaID               uuid.UUID `json:"area_id"`
	AreaName             string    `json:"area_name"`
	TotalInitiatives     int       `json:"total_initiatives"`
	CompletedInitiatives int       `json:"completed_initiatives"`
	AvgProgress          float64   `json:"avg_progress"`
	TotalBudget          float64   `json:"total_budget"`
	TotalSpent           float64   `json:"total_spent"`
	BudgetEfficiency     float64   `json:"budget_efficiency"`
}
