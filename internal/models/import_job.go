package models

import (
	"time"

	"github.com/google/uuid"
)

// Import job statuses. pending -> processing -> {completed | partial | failed}
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobPartial    = "partial"
	JobFailed     = "failed"
)

// Import job item outcomes
const (
	ItemSuccess = "success"
	ItemError   = "error"
)

// Import job item actions
const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Entity types recorded per import row
const (
	EntityArea       = "area"
	EntityObjective  = "objective"
	EntityInitiative = "initiative"
	EntityActivity   = "activity"
)

// ImportJob is the audit record of one bulk-upload attempt
type ImportJob struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TenantID      uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	Filename      string     `json:"filename" db:"filename"`
	ObjectPath    string     `json:"object_path" db:"object_path"`
	Checksum      string     `json:"checksum" db:"checksum"`
	Status        string     `json:"status" db:"status"`
	TotalRows     int        `json:"total_rows" db:"total_rows"`
	ProcessedRows int        `json:"processed_rows" db:"processed_rows"`
	SuccessRows   int        `json:"success_rows" db:"success_rows"`
	ErrorRows     int        `json:"error_rows" db:"error_rows"`
	ErrorSummary  *string    `json:"error_summary,omitempty" db:"error_summary"`
	StartedAt     *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether the job status permits no further transitions
func (j *ImportJob) IsTerminal() bool {
	return j.Status == JobCompleted || j.Status == JobPartial || j.Status == JobFailed
}

// ImportJobItem is one processed row's outcome. RowNumber is 1-indexed and
// immutable once written.
type ImportJobItem struct {
	ID           uuid.UUID `json:"id" db:"id"`
	JobID        uuid.UUID `json:"job_id" db:"job_id"`
	RowNumber    int       `json:"row_number" db:"row_number"`
	EntityType   string    `json:"entity_type" db:"entity_type"`
	EntityTitle  string    `json:"entity_title" db:"entity_title"`
	Action       string    `json:"action" db:"action"`
	Status       string    `json:"status" db:"status"`
	ErrorMessage *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ImportJobSummary is the progress view served while a job is running
type ImportJobSummary struct {
	Job        *ImportJob `json:"job"`
	Progress   float64    `json:"progress"`              // percentage 0-100
	ETASeconds *int64     `json:"eta_seconds,omitempty"` // linear extrapolation, nil when unknown
	Duplicate  bool       `json:"duplicate,omitempty"`   // set when an existing job was returned
}

// ImportStats is the read-side aggregation for /upload/stats
type ImportStats struct {
	TotalJobs    int              `json:"total_jobs"`
	JobsByStatus map[string]int   `json:"jobs_by_status"`
	TotalRows    int              `json:"total_rows"`
	TotalSuccess int              `json:"total_success"`
	TotalErrors  int              `json:"total_errors"`
	TopErrors    []ImportTopError `json:"top_errors"`
	GeneratedAt  time.Time        `json:"generated_at"`
}

// ImportTopError is one entry of the most frequent row error messages
type ImportTopError struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}
