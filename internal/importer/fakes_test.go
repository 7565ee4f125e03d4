package importer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"
)

// In-memory fakes backing the importer tests. Matching is implemented the
// same way the SQL does: case-insensitive on the trimmed title, scoped to
// tenant and parent.

func foldTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type fakeAreaRepo struct {
	mu    sync.Mutex
	areas map[uuid.UUID]*models.Area
	err   error
}

func newFakeAreaRepo() *fakeAreaRepo {
	return &fakeAreaRepo{areas: make(map[uuid.UUID]*models.Area)}
}

func (f *fakeAreaRepo) Create(ctx context.Context, area *models.Area) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.areas[area.ID] = area
	return nil
}

func (f *fakeAreaRepo) CreateOrGet(ctx context.Context, area *models.Area) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.areas {
		if existing.TenantID == area.TenantID && foldTitle(existing.Name) == foldTitle(area.Name) {
			return existing.ID, nil
		}
	}
	f.areas[area.ID] = area
	return area.ID, nil
}

func (f *fakeAreaRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Area, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	area, ok := f.areas[id]
	if !ok || area.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return area, nil
}

func (f *fakeAreaRepo) FindByName(ctx context.Context, tenantID uuid.UUID, name string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, area := range f.areas {
		if area.TenantID == tenantID && area.IsActive && foldTitle(area.Name) == foldTitle(name) {
			return area.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (f *fakeAreaRepo) Update(ctx context.Context, area *models.Area) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.areas[area.ID] = area
	return nil
}

func (f *fakeAreaRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if area, ok := f.areas[id]; ok && area.TenantID == tenantID {
		area.IsActive = false
	}
	return nil
}

func (f *fakeAreaRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Area, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Area
	for _, area := range f.areas {
		if area.TenantID == tenantID && area.IsActive {
			out = append(out, area)
		}
	}
	return out, nil
}

type fakeObjectiveRepo struct {
	mu         sync.Mutex
	objectives map[uuid.UUID]*models.Objective
	links      map[uuid.UUID][]uuid.UUID // objective id -> linked initiative ids
	updateErr  error
}

func newFakeObjectiveRepo() *fakeObjectiveRepo {
	return &fakeObjectiveRepo{
		objectives: make(map[uuid.UUID]*models.Objective),
		links:      make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeObjectiveRepo) Create(ctx context.Context, objective *models.Objective) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objectives[objective.ID] = objective
	return nil
}

func (f *fakeObjectiveRepo) CreateOrGet(ctx context.Context, objective *models.Objective) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.objectives {
		if existing.TenantID == objective.TenantID && existing.AreaID == objective.AreaID &&
			foldTitle(existing.Title) == foldTitle(objective.Title) {
			return existing.ID, nil
		}
	}
	f.objectives[objective.ID] = objective
	return objective.ID, nil
}

func (f *fakeObjectiveRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Objective, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	objective, ok := f.objectives[id]
	if !ok || objective.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return objective, nil
}

func (f *fakeObjectiveRepo) FindByTitle(ctx context.Context, tenantID, areaID uuid.UUID, title string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, objective := range f.objectives {
		if objective.TenantID == tenantID && objective.AreaID == areaID && objective.IsActive &&
			foldTitle(objective.Title) == foldTitle(title) {
			return objective.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (f *fakeObjectiveRepo) Update(ctx context.Context, objective *models.Objective) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objectives[objective.ID] = objective
	return nil
}

func (f *fakeObjectiveRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if objective, ok := f.objectives[id]; ok && objective.TenantID == tenantID {
		objective.IsActive = false
	}
	return nil
}

func (f *fakeObjectiveRepo) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Objective, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Objective
	for _, objective := range f.objectives {
		if objective.TenantID != tenantID || !objective.IsActive {
			continue
		}
		if areaID != nil && objective.AreaID != *areaID {
			continue
		}
		out = append(out, objective)
	}
	return out, nil
}

func (f *fakeObjectiveRepo) LinkInitiative(ctx context.Context, tenantID, objectiveID, initiativeID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, linked := range f.links[objectiveID] {
		if linked == initiativeID {
			return nil
		}
	}
	f.links[objectiveID] = append(f.links[objectiveID], initiativeID)
	return nil
}

type fakeInitiativeRepo struct {
	mu          sync.Mutex
	initiatives map[uuid.UUID]*models.Initiative
}

func newFakeInitiativeRepo() *fakeInitiativeRepo {
	return &fakeInitiativeRepo{initiatives: make(map[uuid.UUID]*models.Initiative)}
}

func (f *fakeInitiativeRepo) Create(ctx context.Context, initiative *models.Initiative) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiatives[initiative.ID] = initiative
	return nil
}

func (f *fakeInitiativeRepo) CreateOrGet(ctx context.Context, initiative *models.Initiative) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.initiatives {
		if existing.TenantID == initiative.TenantID && existing.ObjectiveID == initiative.ObjectiveID &&
			foldTitle(existing.Title) == foldTitle(initiative.Title) {
			return existing.ID, nil
		}
	}
	f.initiatives[initiative.ID] = initiative
	return initiative.ID, nil
}

func (f *fakeInitiativeRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Initiative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	initiative, ok := f.initiatives[id]
	if !ok || initiative.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return initiative, nil
}

func (f *fakeInitiativeRepo) FindByTitle(ctx context.Context, tenantID, objectiveID uuid.UUID, title string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, initiative := range f.initiatives {
		if initiative.TenantID == tenantID && initiative.ObjectiveID == objectiveID && initiative.IsActive &&
			foldTitle(initiative.Title) == foldTitle(title) {
			return initiative.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (f *fakeInitiativeRepo) Update(ctx context.Context, initiative *models.Initiative) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initiatives[initiative.ID] = initiative
	return nil
}

func (f *fakeInitiativeRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if initiative, ok := f.initiatives[id]; ok && initiative.TenantID == tenantID {
		initiative.IsActive = false
	}
	return nil
}

func (f *fakeInitiativeRepo) List(ctx context.Context, tenantID uuid.UUID, areaID *uuid.UUID, limit, offset int) ([]*models.Initiative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Initiative
	for _, initiative := range f.initiatives {
		if initiative.TenantID != tenantID || !initiative.IsActive {
			continue
		}
		if areaID != nil && initiative.AreaID != *areaID {
			continue
		}
		out = append(out, initiative)
	}
	return out, nil
}

func (f *fakeInitiativeRepo) ListByObjective(ctx context.Context, tenantID, objectiveID uuid.UUID) ([]*models.Initiative, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Initiative
	for _, initiative := range f.initiatives {
		if initiative.TenantID == tenantID && initiative.ObjectiveID == objectiveID && initiative.IsActive {
			out = append(out, initiative)
		}
	}
	return out, nil
}

func (f *fakeInitiativeRepo) AreaKPIs(ctx context.Context, tenantID, areaID uuid.UUID) (*models.AreaKPIs, error) {
	return &models.AreaKPIs{}, nil
}

func (f *fakeInitiativeRepo) TenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error) {
	return map[string]any{}, nil
}

type fakeActivityRepo struct {
	mu         sync.Mutex
	activities map[uuid.UUID]*models.Activity
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[uuid.UUID]*models.Activity)}
}

func (f *fakeActivityRepo) Create(ctx context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivityRepo) CreateOrGet(ctx context.Context, activity *models.Activity) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.activities {
		if existing.TenantID == activity.TenantID && existing.InitiativeID == activity.InitiativeID &&
			foldTitle(existing.Title) == foldTitle(activity.Title) {
			return existing.ID, nil
		}
	}
	f.activities[activity.ID] = activity
	return activity.ID, nil
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity, ok := f.activities[id]
	if !ok || activity.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	return activity, nil
}

func (f *fakeActivityRepo) FindByTitle(ctx context.Context, tenantID, initiativeID uuid.UUID, title string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, activity := range f.activities {
		if activity.TenantID == tenantID && activity.InitiativeID == initiativeID && activity.IsActive &&
			foldTitle(activity.Title) == foldTitle(title) {
			return activity.ID, nil
		}
	}
	return uuid.Nil, nil
}

func (f *fakeActivityRepo) Update(ctx context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activities[activity.ID] = activity
	return nil
}

func (f *fakeActivityRepo) SoftDelete(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if activity, ok := f.activities[id]; ok && activity.TenantID == tenantID {
		activity.IsActive = false
	}
	return nil
}

func (f *fakeActivityRepo) ListByInitiative(ctx context.Context, tenantID, initiativeID uuid.UUID, limit, offset int) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Activity
	for _, activity := range f.activities {
		if activity.TenantID == tenantID && activity.InitiativeID == initiativeID && activity.IsActive {
			out = append(out, activity)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]uuid.UUID // lower-cased email -> id
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]uuid.UUID)}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	for _, userID := range f.users {
		if userID == id {
			return &models.User{ID: id, TenantID: tenantID}, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (uuid.UUID, error) {
	if id, ok := f.users[strings.ToLower(strings.TrimSpace(email))]; ok {
		return id, nil
	}
	return uuid.Nil, nil
}

func (f *fakeUserRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	return nil, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.ImportJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*models.ImportJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *models.ImportJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *job
	stored.CreatedAt = time.Now()
	f.jobs[job.ID] = &stored
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.TenantID != tenantID {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) FindRecentByChecksum(ctx context.Context, tenantID uuid.UUID, checksum string, since time.Time) (*models.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *models.ImportJob
	for _, job := range f.jobs {
		if job.TenantID != tenantID || job.Checksum != checksum || job.CreatedAt.Before(since) {
			continue
		}
		if newest == nil || job.CreatedAt.After(newest.CreatedAt) {
			newest = job
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeJobRepo) MarkProcessing(ctx context.Context, tenantID, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.TenantID != tenantID || job.IsTerminal() {
		return fmt.Errorf("%w: job %s cannot transition to processing", common.ErrTerminalState, id)
	}
	now := time.Now()
	job.Status = models.JobProcessing
	job.StartedAt = &now
	return nil
}

func (f *fakeJobRepo) UpdateProgress(ctx context.Context, tenantID, id uuid.UUID, processed, success, errorRows int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok && job.TenantID == tenantID && job.Status == models.JobProcessing {
		job.ProcessedRows = processed
		job.SuccessRows = success
		job.ErrorRows = errorRows
	}
	return nil
}

func (f *fakeJobRepo) Finish(ctx context.Context, tenantID, id uuid.UUID, status string, errorSummary *string) error {
	if status != models.JobCompleted && status != models.JobPartial && status != models.JobFailed {
		return fmt.Errorf("%w: %q is not a terminal status", common.ErrValidation, status)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok || job.TenantID != tenantID || job.IsTerminal() {
		return fmt.Errorf("%w: job %s is already finished", common.ErrTerminalState, id)
	}
	now := time.Now()
	job.Status = status
	job.ErrorSummary = errorSummary
	job.CompletedAt = &now
	return nil
}

func (f *fakeJobRepo) List(ctx context.Context, tenantID uuid.UUID, filter *repositories.ImportJobFilter) ([]*models.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ImportJob
	for _, job := range f.jobs {
		if job.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && job.Status != filter.Status {
			continue
		}
		copied := *job
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeJobRepo) Stats(ctx context.Context, tenantID uuid.UUID) (*models.ImportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &models.ImportStats{JobsByStatus: make(map[string]int)}
	for _, job := range f.jobs {
		if job.TenantID != tenantID {
			continue
		}
		stats.TotalJobs++
		stats.JobsByStatus[job.Status]++
		stats.TotalRows += job.TotalRows
		stats.TotalSuccess += job.SuccessRows
		stats.TotalErrors += job.ErrorRows
	}
	return stats, nil
}

func (f *fakeJobRepo) ReapStale(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reaped int64
	for _, job := range f.jobs {
		if job.Status == models.JobProcessing && job.StartedAt != nil && job.StartedAt.Before(cutoff) {
			job.Status = models.JobFailed
			reaped++
		}
	}
	return reaped, nil
}

type fakeItemRepo struct {
	mu    sync.Mutex
	items []*models.ImportJobItem
	err   error
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{}
}

func (f *fakeItemRepo) Insert(ctx context.Context, item *models.ImportJobItem) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.items {
		if existing.JobID == item.JobID && existing.RowNumber == item.RowNumber && existing.EntityType == item.EntityType {
			return nil
		}
	}
	f.items = append(f.items, item)
	return nil
}

func (f *fakeItemRepo) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*models.ImportJobItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ImportJobItem
	for _, item := range f.items {
		if item.JobID == jobID {
			out = append(out, item)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeItemRepo) CountByJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, item := range f.items {
		if item.JobID == jobID {
			count++
		}
	}
	return count, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) put(bucket, object string, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+object] = data
}

func (f *fakeStorage) PresignedUploadPost(ctx context.Context, bucket, object string, maxBytes int64, expiry time.Duration) (string, map[string]string, error) {
	fields := map[string]string{
		"key":    object,
		"policy": "signed-policy",
	}
	return "https://storage.test/" + bucket, fields, nil
}

func (f *fakeStorage) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, 0, fmt.Errorf("object %s not found", object)
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (f *fakeStorage) StatObject(ctx context.Context, bucket, object string) (int64, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[bucket+"/"+object]
	if !ok {
		return 0, "", fmt.Errorf("object %s not found", object)
	}
	return int64(len(data)), "application/octet-stream", nil
}

func (f *fakeStorage) RemoveObject(ctx context.Context, bucket, object string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, bucket+"/"+object)
	return nil
}

func (f *fakeStorage) EnsureBucketExists(ctx context.Context, bucket string) error {
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: uuid.NewString(), Type: task.Type(), Queue: importQueue}, nil
}

type fakeCache struct {
	mu              sync.Mutex
	strings         map[string]string
	summaries       map[string]*models.ImportJobSummary
	tenantSummaries map[uuid.UUID]map[string]any
	slots           map[uuid.UUID]int
	rateCounts      map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		strings:         make(map[string]string),
		summaries:       make(map[string]*models.ImportJobSummary),
		tenantSummaries: make(map[uuid.UUID]map[string]any),
		slots:           make(map[uuid.UUID]int),
		rateCounts:      make(map[string]int),
	}
}

func summaryKey(tenantID, jobID uuid.UUID) string {
	return tenantID.String() + ":" + jobID.String()
}

func (f *fakeCache) GetJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) (*models.ImportJobSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[summaryKey(tenantID, jobID)], nil
}

func (f *fakeCache) SetJobSummary(ctx context.Context, tenantID uuid.UUID, summary *models.ImportJobSummary, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[summaryKey(tenantID, summary.Job.ID)] = summary
	return nil
}

func (f *fakeCache) DeleteJobSummary(ctx context.Context, tenantID, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.summaries, summaryKey(tenantID, jobID))
	return nil
}

func (f *fakeCache) GetTenantSummary(ctx context.Context, tenantID uuid.UUID) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tenantSummaries[tenantID], nil
}

func (f *fakeCache) SetTenantSummary(ctx context.Context, tenantID uuid.UUID, summary map[string]any, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tenantSummaries[tenantID] = summary
	return nil
}

func (f *fakeCache) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tenantSummaries, tenantID)
	return nil
}

func (f *fakeCache) AcquireImportSlot(ctx context.Context, tenantID uuid.UUID, ceiling int, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slots[tenantID] >= ceiling {
		return false, nil
	}
	f.slots[tenantID]++
	return true, nil
}

func (f *fakeCache) ReleaseImportSlot(ctx context.Context, tenantID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slots[tenantID] > 0 {
		f.slots[tenantID]--
	}
	return nil
}

func (f *fakeCache) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rateCounts[key]++
	return f.rateCounts[key] > limit, nil
}

func (f *fakeCache) SetString(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.strings[key] = value
	return nil
}

func (f *fakeCache) GetString(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.strings[key], nil
}

func (f *fakeCache) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.strings, key)
	return nil
}
