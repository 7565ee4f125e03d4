package models

import (
	"time"

	"github.com/google/uuid"
)

// Status values shared by objectives and initiatives
const (
	StatusPlanning   = "planning"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue" // objectives only
	StatusOnHold     = "on_hold" // initiatives only
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type Objective struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	TenantID    uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	AreaID      uuid.UUID  `json:"area_id" db:"area_id"`
	Title       string     `json:"title" db:"title"`
	Description *string    `json:"description,omitempty" db:"description"`
	Quarter     *string    `json:"quarter,omitempty" db:"quarter"`
	Status      string     `json:"status" db:"status"`
	Priority    string     `json:"priority" db:"priority"`
	Progress    int        `json:"progress" db:"progress"`
	StartDate   *time.Time `json:"start_date,omitempty" db:"start_date"`
	TargetDate  *time.Time `json:"target_date,omitempty" db:"target_date"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// ObjectiveInitiative is the many-to-many junction between objectives and
// initiatives
type ObjectiveInitiative struct {
	ObjectiveID  uuid.UUID `json:"objective_id" db:"objective_id"`
	InitiativeID uuid.UUID `json:"initiative_id" db:"initiative_id"`
	TenantID     uuid.UUID `json:"tenant_id" db:"tenant_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
