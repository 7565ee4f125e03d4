package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"okrhub/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=okrhub_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestTenant creates a test tenant for testing
func SetupTestTenant(t *testing.T, db *TestDB) uuid.UUID {
	t.Helper()

	tenantID := uuid.New()
	query := `
		INSERT INTO tenants (id, name, subdomain, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
		ON CONFLICT (subdomain) DO NOTHING
	`
	_, err := db.Pool.Exec(context.Background(), query, tenantID, "Test Tenant", "test-tenant", time.Now())
	if err != nil {
		t.Fatalf("Failed to create test tenant: %v", err)
	}

	return tenantID
}

// SetupTestArea creates a test area for testing
func SetupTestArea(t *testing.T, db *TestDB, tenantID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	areaID := uuid.New()
	query := `
		INSERT INTO areas (id, tenant_id, name, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $4)
	`
	_, err := db.Pool.Exec(context.Background(), query, areaID, tenantID, name, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test area: %v", err)
	}

	return areaID
}

// SetupTestObjective creates a test objective under the given area
func SetupTestObjective(t *testing.T, db *TestDB, tenantID, areaID uuid.UUID, title string) *models.Objective {
	t.Helper()

	objective := &models.Objective{
		ID:        uuid.New(),
		TenantID:  tenantID,
		AreaID:    areaID,
		Title:     title,
		Status:    models.StatusPlanning,
		Priority:  models.PriorityMedium,
		Progress:  0,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO objectives (id, tenant_id, area_id, title, status, priority, progress, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		objective.ID, objective.TenantID, objective.AreaID, objective.Title,
		objective.Status, objective.Priority, objective.Progress, objective.IsActive,
		objective.CreatedAt, objective.UpdatedAt)
	if err != nil {
		t.Fatalf("Failed to create test objective: %v", err)
	}

	return objective
}

// SetupTestImportJob creates a pending import job for testing
func SetupTestImportJob(t *testing.T, db *TestDB, tenantID, userID uuid.UUID, totalRows int) *models.ImportJob {
	t.Helper()

	job := &models.ImportJob{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		Filename:   "test.csv",
		ObjectPath: "imports/test/test.csv",
		Checksum:   "0000000000000000000000000000000000000000000000000000000000000000",
		Status:     models.JobPending,
		TotalRows:  totalRows,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}

	query := `
		INSERT INTO import_jobs (id, tenant_id, user_id, filename, object_path, checksum, status, total_rows, processed_rows, success_rows, error_rows, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, 0, 0, $9, $9)
	`
	_, err := db.Pool.Exec(context.Background(), query,
		job.ID, job.TenantID, job.UserID, job.Filename, job.ObjectPath,
		job.Checksum, job.Status, job.TotalRows, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test import job: %v", err)
	}

	return job
}
