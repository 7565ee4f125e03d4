package importer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"okrhub/internal/models"
	"okrhub/internal/repositories"
)

// RowProcessor maps one parsed row onto the entity hierarchy. Entities are
// resolved in fixed order (area, objective, initiative, activity) because
// each level needs its parent's id. A row failure is recorded and processing
// moves to the next row; only systemic errors abort the job.
type RowProcessor struct {
	matcher     *Matcher
	areas       repositories.AreaRepository
	objectives  repositories.ObjectiveRepository
	initiatives repositories.InitiativeRepository
	activities  repositories.ActivityRepository
	users       repositories.UserRepository
}

func NewRowProcessor(
	matcher *Matcher,
	areas repositories.AreaRepository,
	objectives repositories.ObjectiveRepository,
	initiatives repositories.InitiativeRepository,
	activities repositories.ActivityRepository,
	users repositories.UserRepository,
) *RowProcessor {
	return &RowProcessor{
		matcher:     matcher,
		areas:       areas,
		objectives:  objectives,
		initiatives: initiatives,
		activities:  activities,
		users:       users,
	}
}

// rowError marks a failure scoped to a single row: bad field values, an
// unparseable cell. The row is recorded as failed and processing continues.
type rowError struct {
	err error
}

func (e rowError) Error() string { return e.err.Error() }
func (e rowError) Unwrap() error { return e.err }

func rowErr(err error) error {
	if err == nil {
		return nil
	}
	return rowError{err: err}
}

// isSystemic separates infrastructure failures from row-level problems.
// Field validation failures and Postgres reported errors (constraints, bad
// values) stay row-scoped; context cancellation and transport failures
// terminate the whole job.
func isSystemic(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var rErr rowError
	if errors.As(err, &rErr) {
		return false
	}
	var pgErr *pgconn.PgError
	return !errors.As(err, &pgErr)
}

func successItem(jobID uuid.UUID, rowNumber int, entityType, title, action string, warning *string) *models.ImportJobItem {
	return &models.ImportJobItem{
		ID:           uuid.New(),
		JobID:        jobID,
		RowNumber:    rowNumber,
		EntityType:   entityType,
		EntityTitle:  title,
		Action:       action,
		Status:       models.ItemSuccess,
		ErrorMessage: warning,
	}
}

func errorItem(jobID uuid.UUID, rowNumber int, entityType, title, message string) *models.ImportJobItem {
	return &models.ImportJobItem{
		ID:           uuid.New(),
		JobID:        jobID,
		RowNumber:    rowNumber,
		EntityType:   entityType,
		EntityTitle:  title,
		Action:       models.ActionCreate,
		Status:       models.ItemError,
		ErrorMessage: &message,
	}
}

// Process handles one row. It returns the per-entity outcome items for the
// row; a non-nil error means a systemic failure that should fail the job.
func (p *RowProcessor) Process(ctx context.Context, tenantID, jobID uuid.UUID, row Row) ([]*models.ImportJobItem, error) {
	var items []*models.ImportJobItem

	areaName := row.Get(ColAreaName)
	objectiveTitle := row.Get(ColObjectiveTitle)
	initiativeTitle := row.Get(ColInitiativeTitle)

	if areaName == "" {
		return append(items, errorItem(jobID, row.Number, models.EntityArea, "", "area_name is required")), nil
	}
	if objectiveTitle == "" {
		return append(items, errorItem(jobID, row.Number, models.EntityObjective, "", "objective_title is required")), nil
	}
	if initiativeTitle == "" {
		return append(items, errorItem(jobID, row.Number, models.EntityInitiative, "", "initiative_title is required")), nil
	}

	// 1. Area
	areaID, action, err := p.resolveArea(ctx, tenantID, areaName)
	if err != nil {
		if isSystemic(err) {
			return items, err
		}
		return append(items, errorItem(jobID, row.Number, models.EntityArea, areaName, fmt.Sprintf("failed to save area: %v", err))), nil
	}
	items = append(items, successItem(jobID, row.Number, models.EntityArea, areaName, action, nil))

	// 2. Objective
	objectiveID, action, err := p.resolveObjective(ctx, tenantID, areaID, objectiveTitle, row)
	if err != nil {
		if isSystemic(err) {
			return items, err
		}
		return append(items, errorItem(jobID, row.Number, models.EntityObjective, objectiveTitle, err.Error())), nil
	}
	items = append(items, successItem(jobID, row.Number, models.EntityObjective, objectiveTitle, action, nil))

	// 3. Initiative
	initiativeID, action, err := p.resolveInitiative(ctx, tenantID, areaID, objectiveID, initiativeTitle, row)
	if err != nil {
		if isSystemic(err) {
			return items, err
		}
		return append(items, errorItem(jobID, row.Number, models.EntityInitiative, initiativeTitle, err.Error())), nil
	}
	items = append(items, successItem(jobID, row.Number, models.EntityInitiative, initiativeTitle, action, nil))

	// 4. Activity, only when the row carries one
	if row.Has(ColActivityTitle) {
		activityTitle := row.Get(ColActivityTitle)
		action, warning, err := p.resolveActivity(ctx, tenantID, initiativeID, activityTitle, row)
		if err != nil {
			if isSystemic(err) {
				return items, err
			}
			return append(items, errorItem(jobID, row.Number, models.EntityActivity, activityTitle, err.Error())), nil
		}
		items = append(items, successItem(jobID, row.Number, models.EntityActivity, activityTitle, action, warning))
	}

	return items, nil
}

func (p *RowProcessor) resolveArea(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, string, error) {
	existing, err := p.matcher.MatchArea(ctx, tenantID, name)
	if err != nil {
		return uuid.Nil, "", err
	}
	if existing != uuid.Nil {
		return existing, models.ActionUpdate, nil
	}

	area := &models.Area{
		ID:       uuid.New(),
		TenantID: tenantID,
		Name:     name,
		IsActive: true,
	}
	id, err := p.areas.CreateOrGet(ctx, area)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, models.ActionCreate, nil
}

func (p *RowProcessor) resolveObjective(ctx context.Context, tenantID, areaID uuid.UUID, title string, row Row) (uuid.UUID, string, error) {
	existing, err := p.matcher.MatchObjective(ctx, tenantID, areaID, title)
	if err != nil {
		return uuid.Nil, "", err
	}

	if existing != uuid.Nil {
		objective, err := p.objectives.GetByID(ctx, tenantID, existing)
		if err != nil {
			return uuid.Nil, "", err
		}
		if err := applyObjectiveFields(objective, row); err != nil {
			return uuid.Nil, "", rowErr(err)
		}
		if err := p.objectives.Update(ctx, objective); err != nil {
			return uuid.Nil, "", err
		}
		return existing, models.ActionUpdate, nil
	}

	objective := &models.Objective{
		ID:       uuid.New(),
		TenantID: tenantID,
		AreaID:   areaID,
		Title:    title,
		Status:   models.StatusPlanning,
		Priority: models.PriorityMedium,
		Progress: 0,
		IsActive: true,
	}
	if err := applyObjectiveFields(objective, row); err != nil {
		return uuid.Nil, "", rowErr(err)
	}
	id, err := p.objectives.CreateOrGet(ctx, objective)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, models.ActionCreate, nil
}

func (p *RowProcessor) resolveInitiative(ctx context.Context, tenantID, areaID, objectiveID uuid.UUID, title string, row Row) (uuid.UUID, string, error) {
	existing, err := p.matcher.MatchInitiative(ctx, tenantID, objectiveID, title)
	if err != nil {
		return uuid.Nil, "", err
	}

	var id uuid.UUID
	var action string

	if existing != uuid.Nil {
		initiative, err := p.initiatives.GetByID(ctx, tenantID, existing)
		if err != nil {
			return uuid.Nil, "", err
		}
		if err := applyInitiativeFields(initiative, row); err != nil {
			return uuid.Nil, "", rowErr(err)
		}
		if err := p.initiatives.Update(ctx, initiative); err != nil {
			return uuid.Nil, "", err
		}
		id, action = existing, models.ActionUpdate
	} else {
		initiative := &models.Initiative{
			ID:          uuid.New(),
			TenantID:    tenantID,
			AreaID:      areaID,
			ObjectiveID: objectiveID,
			Title:       title,
			Status:      models.StatusPlanning,
			Priority:    models.PriorityMedium,
			Progress:    0,
			IsActive:    true,
		}
		if err := applyInitiativeFields(initiative, row); err != nil {
			return uuid.Nil, "", rowErr(err)
		}
		id, err = p.initiatives.CreateOrGet(ctx, initiative)
		if err != nil {
			return uuid.Nil, "", err
		}
		action = models.ActionCreate
	}

	if err := p.objectives.LinkInitiative(ctx, tenantID, objectiveID, id); err != nil {
		return uuid.Nil, "", err
	}
	return id, action, nil
}

func (p *RowProcessor) resolveActivity(ctx context.Context, tenantID, initiativeID uuid.UUID, title string, row Row) (string, *string, error) {
	var warning *string

	var assignedTo *uuid.UUID
	if row.Has(ColAssignedToEmail) {
		email := row.Get(ColAssignedToEmail)
		userID, err := p.users.FindByEmail(ctx, tenantID, email)
		if err != nil {
			return "", nil, err
		}
		if userID == uuid.Nil {
			// Soft failure: the row still succeeds, the activity stays
			// unassigned.
			msg := fmt.Sprintf("warning: no user with email %q, activity left unassigned", email)
			warning = &msg
		} else {
			assignedTo = &userID
		}
	}

	completed := false
	if row.Has(ColActivityCompleted) {
		parsed, err := parseBool(row.Get(ColActivityCompleted))
		if err != nil {
			return "", nil, rowErr(fmt.Errorf("activity_completed: %v", err))
		}
		completed = parsed
	}

	existing, err := p.matcher.MatchActivity(ctx, tenantID, initiativeID, title)
	if err != nil {
		return "", nil, err
	}

	if existing != uuid.Nil {
		activity, err := p.activities.GetByID(ctx, tenantID, existing)
		if err != nil {
			return "", nil, err
		}
		activity.IsCompleted = completed
		if assignedTo != nil {
			activity.AssignedTo = assignedTo
		}
		if err := p.activities.Update(ctx, activity); err != nil {
			return "", nil, err
		}
		return models.ActionUpdate, warning, nil
	}

	activity := &models.Activity{
		ID:           uuid.New(),
		TenantID:     tenantID,
		InitiativeID: initiativeID,
		Title:        title,
		IsCompleted:  completed,
		AssignedTo:   assignedTo,
		IsActive:     true,
	}
	if _, err := p.activities.CreateOrGet(ctx, activity); err != nil {
		return "", nil, err
	}
	return models.ActionCreate, warning, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a boolean value", raw)
}

func parseMoney(raw, fieldName string) (*float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", fieldName)
	}
	if value < 0 {
		return nil, fmt.Errorf("%s cannot be negative", fieldName)
	}
	return &value, nil
}
