package importer

import (
	"fmt"

	"okrhub/internal/common"
	"okrhub/internal/models"
)

// applyObjectiveFields copies the optional objective columns present in the
// row onto the objective, validating each. The first invalid field fails the
// row with a per-field message.
func applyObjectiveFields(objective *models.Objective, row Row) error {
	if row.Has(ColObjectiveDescription) {
		description := row.Get(ColObjectiveDescription)
		objective.Description = &description
	}
	if row.Has(ColQuarter) {
		quarter := row.Get(ColQuarter)
		objective.Quarter = &quarter
	}
	if row.Has(ColObjectivePriority) {
		priority := row.Get(ColObjectivePriority)
		if err := common.ValidatePriority(priority); err != nil {
			return fmt.Errorf("objective_priority: %v", err)
		}
		objective.Priority = priority
	}
	if row.Has(ColObjectiveStatus) {
		status := row.Get(ColObjectiveStatus)
		if err := common.ValidateObjectiveStatus(status); err != nil {
			return fmt.Errorf("objective_status: %v", err)
		}
		objective.Status = status
	}
	if row.Has(ColObjectiveProgress) {
		progress, err := common.ParseProgress(row.Get(ColObjectiveProgress), "objective_progress")
		if err != nil {
			return err
		}
		objective.Progress = progress
	}
	if row.Has(ColObjectiveTargetDate) {
		targetDate, err := common.ParseDate(row.Get(ColObjectiveTargetDate))
		if err != nil {
			return fmt.Errorf("objective_target_date: %v", err)
		}
		objective.TargetDate = targetDate
	}
	return nil
}

// applyInitiativeFields does the same for the initiative columns
func applyInitiativeFields(initiative *models.Initiative, row Row) error {
	if row.Has(ColInitiativeDescription) {
		description := row.Get(ColInitiativeDescription)
		initiative.Description = &description
	}
	if row.Has(ColInitiativePriority) {
		priority := row.Get(ColInitiativePriority)
		if err := common.ValidatePriority(priority); err != nil {
			return fmt.Errorf("initiative_priority: %v", err)
		}
		initiative.Priority = priority
	}
	if row.Has(ColInitiativeStatus) {
		status := row.Get(ColInitiativeStatus)
		if err := common.ValidateInitiativeStatus(status); err != nil {
			return fmt.Errorf("initiative_status: %v", err)
		}
		initiative.Status = status
	}
	if row.Has(ColInitiativeProgress) {
		progress, err := common.ParseProgress(row.Get(ColInitiativeProgress), "initiative_progress")
		if err != nil {
			return err
		}
		initiative.Progress = progress
	}
	if row.Has(ColInitiativeTargetDate) {
		targetDate, err := common.ParseDate(row.Get(ColInitiativeTargetDate))
		if err != nil {
			return fmt.Errorf("initiative_target_date: %v", err)
		}
		initiative.TargetDate = targetDate
	}
	if row.Has(ColBudget) {
		budget, err := parseMoney(row.Get(ColBudget), "budget")
		if err != nil {
			return err
		}
		initiative.Budget = budget
	}
	if row.Has(ColActualCost) {
		actualCost, err := parseMoney(row.Get(ColActualCost), "actual_cost")
		if err != nil {
			return err
		}
		initiative.ActualCost = actualCost
	}
	return nil
}
