package repositories

import (
	"context"
	"testing"
	"time"

	"okrhub/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AreaRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      AreaRepository
	tenantID1 uuid.UUID
	tenantID2 uuid.UUID
	areaID    uuid.UUID
	context   context.Context
}

func (suite *AreaRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAreaRepo(mock)
	suite.tenantID1 = uuid.New()
	suite.tenantID2 = uuid.New()
	suite.areaID = uuid.New()
	suite.context = context.Background()
}

func (suite *AreaRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAreaRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AreaRepoTestSuite))
}

func (suite *AreaRepoTestSuite) TestCreate_Success() {
	area := &models.Area{
		ID:          uuid.New(),
		TenantID:    suite.tenantID1,
		Name:        "Sales",
		Description: stringPtr("Revenue generating area"),
		IsActive:    true,
	}

	suite.mock.ExpectExec(`
		INSERT INTO areas \(id, tenant_id, name, description, manager_id, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\), NOW\(\)\)
	`).WithArgs(area.ID, area.TenantID, area.Name, area.Description, area.ManagerID, area.IsActive).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, area)
	assert.NoError(suite.T(), err)
}

func (suite *AreaRepoTestSuite) TestCreateOrGet_InsertsNewRow() {
	area := &models.Area{
		ID:       uuid.New(),
		TenantID: suite.tenantID1,
		Name:     "Marketing",
	}

	suite.mock.ExpectQuery(`
		INSERT INTO areas \(id, tenant_id, name, description, manager_id, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, TRUE, NOW\(\), NOW\(\)\)
		ON CONFLICT \(tenant_id, \(LOWER\(BTRIM\(name\)\)\)\) DO UPDATE SET updated_at = NOW\(\)
		RETURNING id
	`).WithArgs(area.ID, area.TenantID, area.Name, area.Description, area.ManagerID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(area.ID))

	id, err := suite.repo.CreateOrGet(suite.context, area)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), area.ID, id)
}

func (suite *AreaRepoTestSuite) TestCreateOrGet_ConflictReturnsWinningRowID() {
	existingID := uuid.New()
	area := &models.Area{
		ID:       uuid.New(),
		TenantID: suite.tenantID1,
		Name:     " SALES ", // case-folded duplicate of an existing row
	}

	suite.mock.ExpectQuery(`
		INSERT INTO areas \(id, tenant_id, name, description, manager_id, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, TRUE, NOW\(\), NOW\(\)\)
		ON CONFLICT \(tenant_id, \(LOWER\(BTRIM\(name\)\)\)\) DO UPDATE SET updated_at = NOW\(\)
		RETURNING id
	`).WithArgs(area.ID, area.TenantID, area.Name, area.Description, area.ManagerID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(existingID))

	id, err := suite.repo.CreateOrGet(suite.context, area)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), existingID, id)
	assert.NotEqual(suite.T(), area.ID, id)
}

func (suite *AreaRepoTestSuite) TestFindByName_Match() {
	suite.mock.ExpectQuery(`
		SELECT id
		FROM areas
		WHERE tenant_id = \$1 AND LOWER\(BTRIM\(name\)\) = LOWER\(BTRIM\(\$2\)\) AND is_active = TRUE
	`).WithArgs(suite.tenantID1, "  sales  ").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(suite.areaID))

	id, err := suite.repo.FindByName(suite.context, suite.tenantID1, "  sales  ")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.areaID, id)
}

func (suite *AreaRepoTestSuite) TestFindByName_NoMatchReturnsNilID() {
	suite.mock.ExpectQuery(`
		SELECT id
		FROM areas
		WHERE tenant_id = \$1 AND LOWER\(BTRIM\(name\)\) = LOWER\(BTRIM\(\$2\)\) AND is_active = TRUE
	`).WithArgs(suite.tenantID1, "Engineering").
		WillReturnError(pgx.ErrNoRows)

	id, err := suite.repo.FindByName(suite.context, suite.tenantID1, "Engineering")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), uuid.Nil, id)
}

func (suite *AreaRepoTestSuite) TestFindByName_TenantIsolation() {
	suite.mock.ExpectQuery(`
		SELECT id
		FROM areas
		WHERE tenant_id = \$1 AND LOWER\(BTRIM\(name\)\) = LOWER\(BTRIM\(\$2\)\) AND is_active = TRUE
	`).WithArgs(suite.tenantID2, "Sales").
		WillReturnError(pgx.ErrNoRows)

	id, err := suite.repo.FindByName(suite.context, suite.tenantID2, "Sales")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), uuid.Nil, id)
}

func (suite *AreaRepoTestSuite) TestGetByID_Success() {
	now := time.Now()
	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, manager_id, is_active, created_at, updated_at
		FROM areas
		WHERE tenant_id = \$1 AND id = \$2
	`).WithArgs(suite.tenantID1, suite.areaID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "manager_id", "is_active", "created_at", "updated_at"}).
			AddRow(suite.areaID, suite.tenantID1, "Sales", stringPtr("Revenue"), (*uuid.UUID)(nil), true, now, now))

	area, err := suite.repo.GetByID(suite.context, suite.tenantID1, suite.areaID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Sales", area.Name)
	assert.Equal(suite.T(), suite.tenantID1, area.TenantID)
}

func (suite *AreaRepoTestSuite) TestGetByID_WrongTenant() {
	suite.mock.ExpectQuery(`
		SELECT id, tenant_id, name, description, manager_id, is_active, created_at, updated_at
		FROM areas
		WHERE tenant_id = \$1 AND id = \$2
	`).WithArgs(suite.tenantID2, suite.areaID).
		WillReturnError(pgx.ErrNoRows)

	area, err := suite.repo.GetByID(suite.context, suite.tenantID2, suite.areaID)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), area)
}

func (suite *AreaRepoTestSuite) TestSoftDelete_Success() {
	suite.mock.ExpectExec(`UPDATE areas SET is_active = FALSE, updated_at = NOW\(\) WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID1, suite.areaID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.SoftDelete(suite.context, suite.tenantID1, suite.areaID)
	assert.NoError(suite.T(), err)
}

func (suite *AreaRepoTestSuite) TestCreate_ContextCancelled() {
	ctx, cancel := context.WithCancel(suite.context)
	cancel()

	area := &models.Area{ID: uuid.New(), TenantID: suite.tenantID1, Name: "Sales"}

	suite.mock.ExpectExec(`
		INSERT INTO areas \(id, tenant_id, name, description, manager_id, is_active, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\), NOW\(\)\)
	`).WithArgs(area.ID, area.TenantID, area.Name, area.Description, area.ManagerID, area.IsActive).
		WillReturnError(context.Canceled)

	err := suite.repo.Create(ctx, area)
	assert.Error(suite.T(), err)
}

func stringPtr(s string) *string {
	return &s
}
