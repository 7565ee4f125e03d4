package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"
)

type DispatcherTestSuite struct {
	suite.Suite
	jobs       *fakeJobRepo
	storage    *fakeStorage
	cache      *fakeCache
	queue      *fakeQueue
	dispatcher *Dispatcher
	tenantID   uuid.UUID
	userID     uuid.UUID
	ctx        context.Context
}

func (suite *DispatcherTestSuite) SetupTest() {
	suite.jobs = newFakeJobRepo()
	suite.storage = newFakeStorage()
	suite.cache = newFakeCache()
	suite.queue = &fakeQueue{}

	areas := newFakeAreaRepo()
	objectives := newFakeObjectiveRepo()
	initiatives := newFakeInitiativeRepo()
	activities := newFakeActivityRepo()
	users := newFakeUserRepo()
	matcher := NewMatcher(areas, objectives, initiatives, activities)
	processor := NewRowProcessor(matcher, areas, objectives, initiatives, activities, users)
	runner := NewRunner(processor, suite.jobs, newFakeItemRepo(), suite.storage, suite.cache, testBucket)

	suite.dispatcher = NewDispatcher(suite.jobs, runner, suite.storage, suite.cache, suite.queue, testBucket)
	suite.tenantID = uuid.New()
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func TestDispatcherTestSuite(t *testing.T) {
	suite.Run(t, new(DispatcherTestSuite))
}

func (suite *DispatcherTestSuite) TestRequestSignedURL() {
	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	resp, err := suite.dispatcher.RequestSignedURL(suite.ctx, suite.tenantID, suite.userID, &SignedURLRequest{
		Filename:    "okrs.csv",
		FileSize:    int64(len(content)),
		ContentType: "text/csv",
		Checksum:    Checksum(content),
	})
	require.NoError(suite.T(), err)

	assert.NotEmpty(suite.T(), resp.UploadURL)
	assert.Equal(suite.T(), resp.ObjectPath, resp.Fields["key"])
	assert.NotEmpty(suite.T(), resp.Fields["policy"])
	assert.True(suite.T(), strings.HasPrefix(resp.ObjectPath, "imports/"+suite.tenantID.String()+"/"))
	assert.True(suite.T(), strings.HasSuffix(resp.ObjectPath, "/okrs.csv"))
	assert.Equal(suite.T(), MaxUploadMB, resp.MaxSizeMB)
	assert.Equal(suite.T(), 3600, resp.ExpiresIn)

	// The declared metadata is stashed for the notify step
	raw, err := suite.cache.GetString(suite.ctx, uploadMetaKey(resp.ObjectPath))
	require.NoError(suite.T(), err)
	var meta uploadMeta
	require.NoError(suite.T(), json.Unmarshal([]byte(raw), &meta))
	assert.Equal(suite.T(), "okrs.csv", meta.Filename)
	assert.Equal(suite.T(), suite.userID, meta.UserID)
}

func (suite *DispatcherTestSuite) TestRequestSignedURL_RejectsBadExtension() {
	_, err := suite.dispatcher.RequestSignedURL(suite.ctx, suite.tenantID, suite.userID, &SignedURLRequest{
		Filename: "okrs.exe",
		FileSize: 100,
		Checksum: strings.Repeat("a", 64),
	})
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *DispatcherTestSuite) TestRequestSignedURL_RateLimited() {
	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	req := &SignedURLRequest{
		Filename:    "okrs.csv",
		FileSize:    int64(len(content)),
		ContentType: "text/csv",
		Checksum:    Checksum(content),
	}

	for i := 0; i < signedURLRateLimit; i++ {
		_, err := suite.dispatcher.RequestSignedURL(suite.ctx, suite.tenantID, suite.userID, req)
		require.NoError(suite.T(), err)
	}

	_, err := suite.dispatcher.RequestSignedURL(suite.ctx, suite.tenantID, suite.userID, req)
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrRateLimited)

	// The limit is per user, not per tenant
	_, err = suite.dispatcher.RequestSignedURL(suite.ctx, suite.tenantID, uuid.New(), req)
	assert.NoError(suite.T(), err)
}

// csvWithRows builds a parseable upload with n distinct rows
func csvWithRows(n int) []byte {
	var sb strings.Builder
	sb.WriteString("area_name,objective_title,initiative_title\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "Sales,Grow Revenue,Initiative %d\n", i)
	}
	return []byte(sb.String())
}

func (suite *DispatcherTestSuite) uploadCSV(objectPath string, content []byte) {
	suite.storage.put(testBucket, objectPath, content)
	meta, err := json.Marshal(uploadMeta{Filename: "okrs.csv", Checksum: Checksum(content), UserID: suite.userID})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.cache.SetString(suite.ctx, uploadMetaKey(objectPath), string(meta), uploadURLExpiry))
}

func (suite *DispatcherTestSuite) TestNotify_SmallUploadRunsInline() {
	content := []byte("area_name,objective_title,initiative_title\n" +
		"Sales,Grow Revenue,Q1 Campaign\n" +
		"Sales,Grow Revenue,Q2 Campaign\n")
	suite.uploadCSV("imports/inline.csv", content)

	summary, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/inline.csv")
	require.NoError(suite.T(), err)

	// The caller gets the terminal result, not a pending job
	assert.Equal(suite.T(), models.JobCompleted, summary.Job.Status)
	assert.Equal(suite.T(), 2, summary.Job.TotalRows)
	assert.Equal(suite.T(), 2, summary.Job.SuccessRows)
	assert.False(suite.T(), summary.Duplicate)
	assert.Equal(suite.T(), 0, suite.cache.slots[suite.tenantID])
}

func (suite *DispatcherTestSuite) TestNotify_RowLimitBoundaryRunsInline() {
	content := csvWithRows(syncRowLimit)
	suite.uploadCSV("imports/boundary.csv", content)

	summary, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/boundary.csv")
	require.NoError(suite.T(), err)

	// Exactly at the limit still processes inline: terminal result, no task
	assert.Equal(suite.T(), models.JobCompleted, summary.Job.Status)
	assert.Equal(suite.T(), syncRowLimit, summary.Job.ProcessedRows)
	assert.Empty(suite.T(), suite.queue.tasks)
	assert.Equal(suite.T(), 0, suite.cache.slots[suite.tenantID])
}

func (suite *DispatcherTestSuite) TestNotify_AboveRowLimitIsQueued() {
	content := csvWithRows(syncRowLimit + 1)
	suite.uploadCSV("imports/queued.csv", content)

	summary, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/queued.csv")
	require.NoError(suite.T(), err)

	// One row over the limit: the caller gets a pending job to poll
	assert.Equal(suite.T(), models.JobPending, summary.Job.Status)
	assert.Equal(suite.T(), syncRowLimit+1, summary.Job.TotalRows)
	assert.Equal(suite.T(), 0, summary.Job.ProcessedRows)

	require.Len(suite.T(), suite.queue.tasks, 1)
	task := suite.queue.tasks[0]
	assert.Equal(suite.T(), TypeImportProcess, task.Type())
	var payload ImportTaskPayload
	require.NoError(suite.T(), json.Unmarshal(task.Payload(), &payload))
	assert.Equal(suite.T(), suite.tenantID, payload.TenantID)
	assert.Equal(suite.T(), summary.Job.ID, payload.JobID)

	// The slot stays held until the worker finishes the job
	assert.Equal(suite.T(), 1, suite.cache.slots[suite.tenantID])
}

func (suite *DispatcherTestSuite) TestNotify_EnqueueFailureFailsJob() {
	suite.queue.err = errors.New("queue unavailable")
	content := csvWithRows(syncRowLimit + 1)
	suite.uploadCSV("imports/unqueued.csv", content)

	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/unqueued.csv")
	require.Error(suite.T(), err)

	jobs, listErr := suite.jobs.List(suite.ctx, suite.tenantID, listAllFilter())
	require.NoError(suite.T(), listErr)
	require.Len(suite.T(), jobs, 1)
	assert.Equal(suite.T(), models.JobFailed, jobs[0].Status)
	assert.Equal(suite.T(), 0, suite.cache.slots[suite.tenantID])
}

func (suite *DispatcherTestSuite) TestNotify_DuplicateChecksumReturnsExistingJob() {
	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	suite.uploadCSV("imports/first.csv", content)

	first, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/first.csv")
	require.NoError(suite.T(), err)

	suite.uploadCSV("imports/second.csv", content)
	second, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/second.csv")
	require.NoError(suite.T(), err)

	assert.True(suite.T(), second.Duplicate)
	assert.Equal(suite.T(), first.Job.ID, second.Job.ID)

	jobs, err := suite.jobs.List(suite.ctx, suite.tenantID, listAllFilter())
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), jobs, 1)
}

func (suite *DispatcherTestSuite) TestNotify_SameChecksumOtherTenantIsNotDuplicate() {
	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	suite.uploadCSV("imports/first.csv", content)

	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/first.csv")
	require.NoError(suite.T(), err)

	otherTenant := uuid.New()
	suite.uploadCSV("imports/other.csv", content)
	summary, err := suite.dispatcher.Notify(suite.ctx, otherTenant, suite.userID, "imports/other.csv")
	require.NoError(suite.T(), err)
	assert.False(suite.T(), summary.Duplicate)
}

func (suite *DispatcherTestSuite) TestNotify_MissingObject() {
	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/never-uploaded.csv")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *DispatcherTestSuite) TestNotify_EmptyObjectPath() {
	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *DispatcherTestSuite) TestNotify_ChecksumMismatch() {
	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	suite.storage.put(testBucket, "imports/tampered.csv", content)
	meta, err := json.Marshal(uploadMeta{Filename: "okrs.csv", Checksum: strings.Repeat("a", 64), UserID: suite.userID})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), suite.cache.SetString(suite.ctx, uploadMetaKey("imports/tampered.csv"), string(meta), uploadURLExpiry))

	_, notifyErr := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/tampered.csv")
	require.Error(suite.T(), notifyErr)
	assert.ErrorIs(suite.T(), notifyErr, common.ErrValidation)
}

func (suite *DispatcherTestSuite) TestNotify_UnparseableFileHoldsNoSlot() {
	content := []byte("area_name,objective_title\nSales,Grow\n")
	suite.uploadCSV("imports/short.csv", content)

	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/short.csv")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrValidation)
	assert.Equal(suite.T(), 0, suite.cache.slots[suite.tenantID])
}

func (suite *DispatcherTestSuite) TestNotify_TenantCeilingFull() {
	for i := 0; i < tenantJobCeiling; i++ {
		ok, err := suite.cache.AcquireImportSlot(suite.ctx, suite.tenantID, tenantJobCeiling, slotTTL)
		require.NoError(suite.T(), err)
		require.True(suite.T(), ok)
	}

	content := []byte("area_name,objective_title,initiative_title\nSales,Grow,Q1\n")
	suite.uploadCSV("imports/full.csv", content)

	_, err := suite.dispatcher.Notify(suite.ctx, suite.tenantID, suite.userID, "imports/full.csv")
	require.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, common.ErrConflict)
	assert.Contains(suite.T(), err.Error(), "imports in flight")
}

func listAllFilter() *repositories.ImportJobFilter {
	return &repositories.ImportJobFilter{Limit: 100}
}
