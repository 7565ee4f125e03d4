package testhelpers

import (
	"context"
	"testing"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAreaRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t, "")
	defer testDB.Cleanup()

	tenantID := SetupTestTenant(t, testDB)
	repo := repositories.NewAreaRepo(testDB.Pool)

	t.Run("CreateOrGetConvergesOnCaseFoldedName", func(t *testing.T) {
		first := &models.Area{ID: uuid.New(), TenantID: tenantID, Name: "Sales", IsActive: true}
		firstID, err := repo.CreateOrGet(context.Background(), first)
		require.NoError(t, err)
		assert.Equal(t, first.ID, firstID)

		// A second writer with different casing and padding lands on the
		// same row through the unique index on (tenant_id, lower(btrim(name)))
		second := &models.Area{ID: uuid.New(), TenantID: tenantID, Name: "  SALES "}
		secondID, err := repo.CreateOrGet(context.Background(), second)
		require.NoError(t, err)
		assert.Equal(t, firstID, secondID)
	})

	t.Run("FindByNameIsCaseInsensitive", func(t *testing.T) {
		areaID := SetupTestArea(t, testDB, tenantID, "Marketing")

		found, err := repo.FindByName(context.Background(), tenantID, " marketing ")
		require.NoError(t, err)
		assert.Equal(t, areaID, found)

		// Another tenant sees nothing
		found, err = repo.FindByName(context.Background(), uuid.New(), "Marketing")
		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, found)
	})
}

func TestObjectiveRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t, "")
	defer testDB.Cleanup()

	tenantID := SetupTestTenant(t, testDB)
	repo := repositories.NewObjectiveRepo(testDB.Pool)

	t.Run("CreateOrGetIsScopedToArea", func(t *testing.T) {
		areaOne := SetupTestArea(t, testDB, tenantID, "Engineering")
		areaTwo := SetupTestArea(t, testDB, tenantID, "Support")

		existing := SetupTestObjective(t, testDB, tenantID, areaOne, "Grow Revenue")

		// Same title in the same area converges on the existing row
		dupe := &models.Objective{
			ID:       uuid.New(),
			TenantID: tenantID,
			AreaID:   areaOne,
			Title:    " grow revenue ",
			Status:   models.StatusPlanning,
			Priority: models.PriorityMedium,
		}
		dupeID, err := repo.CreateOrGet(context.Background(), dupe)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, dupeID)

		// Same title under another area is a distinct objective
		other := &models.Objective{
			ID:       uuid.New(),
			TenantID: tenantID,
			AreaID:   areaTwo,
			Title:    "Grow Revenue",
			Status:   models.StatusPlanning,
			Priority: models.PriorityMedium,
		}
		otherID, err := repo.CreateOrGet(context.Background(), other)
		require.NoError(t, err)
		assert.NotEqual(t, existing.ID, otherID)
	})
}

func TestImportJobRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := SetupTestDB(t, "")
	defer testDB.Cleanup()

	tenantID := SetupTestTenant(t, testDB)
	repo := repositories.NewImportJobRepo(testDB.Pool)

	t.Run("Lifecycle", func(t *testing.T) {
		job := SetupTestImportJob(t, testDB, tenantID, uuid.New(), 10)

		require.NoError(t, repo.MarkProcessing(context.Background(), tenantID, job.ID))
		require.NoError(t, repo.UpdateProgress(context.Background(), tenantID, job.ID, 5, 4, 1))

		summary := "1 of 5 rows failed"
		require.NoError(t, repo.Finish(context.Background(), tenantID, job.ID, models.JobPartial, &summary))

		finished, err := repo.GetByID(context.Background(), tenantID, job.ID)
		require.NoError(t, err)
		assert.Equal(t, models.JobPartial, finished.Status)
		assert.Equal(t, 5, finished.ProcessedRows)
		assert.NotNil(t, finished.CompletedAt)
	})

	t.Run("TerminalJobRejectsTransitions", func(t *testing.T) {
		job := SetupTestImportJob(t, testDB, tenantID, uuid.New(), 1)

		require.NoError(t, repo.MarkProcessing(context.Background(), tenantID, job.ID))
		require.NoError(t, repo.Finish(context.Background(), tenantID, job.ID, models.JobCompleted, nil))

		err := repo.Finish(context.Background(), tenantID, job.ID, models.JobFailed, nil)
		assert.ErrorIs(t, err, common.ErrTerminalState)

		err = repo.MarkProcessing(context.Background(), tenantID, job.ID)
		assert.ErrorIs(t, err, common.ErrTerminalState)
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		job := SetupTestImportJob(t, testDB, tenantID, uuid.New(), 1)

		_, err := repo.GetByID(context.Background(), uuid.New(), job.ID)
		assert.Error(t, err)
	})
}
