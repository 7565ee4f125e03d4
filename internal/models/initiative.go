package models

import (
	"time"

	"github.com/google/uuid"
)

type Initiative struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AreaID      uuid.UUID  `json:"area_id" db:"area_id"`
	ObjectiveID uuid.UUID  `json:"objective_id" db:"objective_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	Progress    int        `json:"progress" db:"progress"`
	Budget      *float64   `json:"budget,omitempty" db:"budget"`
	ActualCost  *float64   `json:"actual_cost,omitempty" db:"actual_cost"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	TargetDate  *time.Time `json:"target_date,omitempty" db:"target_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
