package models

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	TenantID     uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	InitiativeID uuid.UUID  `json:"initiative_id" db:"initiative_id"`
	Title        string     `json:"title" db:"title"`
	IsCompleted  bool       `json:"is_completed" db:"is_completed"`
	AssignedTo   *uuid.UUID `json:"assigned_to,omitempty" db:"assigned_to"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
