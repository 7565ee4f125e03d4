package importer

import (
	"context"

	"github.com/google/uuid"

	"okrhub/internal/repositories"
)

// Matcher resolves a candidate entity to an existing row by case-insensitive,
// whitespace-trimmed title equality within its tenant and parent scope. That
// is the entire matching rule: no fuzzy matching. Titles differing only in
// case or surrounding whitespace collapse to the same entity; any other
// difference means a distinct entity.
type Matcher struct {
	areas       repositories.AreaRepository
	objectives  repositories.ObjectiveRepository
	initiatives repositories.InitiativeRepository
	activities  repositories.ActivityRepository
}

func NewMatcher(
	areas repositories.AreaRepository,
	objectives repositories.ObjectiveRepository,
	initiatives repositories.InitiativeRepository,
	activities repositories.ActivityRepository,
) *Matcher {
	return &Matcher{
		areas:       areas,
		objectives:  objectives,
		initiatives: initiatives,
		activities:  activities,
	}
}

// MatchArea returns the id of the area with the given name within the tenant,
// or uuid.Nil when the row should create one.
func (m *Matcher) MatchArea(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	return m.areas.FindByName(ctx, tenantID, name)
}

// MatchObjective scopes the lookup to the parent area
func (m *Matcher) MatchObjective(ctx context.Context, tenantID, areaID uuid.UUID, title string) (uuid.UUID, error) {
	return m.objectives.FindByTitle(ctx, tenantID, areaID, title)
}

// MatchInitiative scopes the lookup to the parent objective. Two initiatives
// with the same title under different objectives stay distinct.
func (m *Matcher) MatchInitiative(ctx context.Context, tenantID, objectiveID uuid.UUID, title string) (uuid.UUID, error) {
	return m.initiatives.FindByTitle(ctx, tenantID, objectiveID, title)
}

// MatchActivity scopes the lookup to the parent initiative
func (m *Matcher) MatchActivity(ctx context.Context, tenantID, initiativeID uuid.UUID, title string) (uuid.UUID, error) {
	return m.activities.FindByTitle(ctx, tenantID, initiativeID, title)
}
