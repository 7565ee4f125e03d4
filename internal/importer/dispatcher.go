package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"okrhub/internal/caching"
	"okrhub/internal/common"
	"okrhub/internal/models"
	"okrhub/internal/repositories"
	"okrhub/internal/services"
)

const (
	// syncRowLimit is the boundary between inline and queued processing.
	// Small uploads get an immediate result; anything larger returns a
	// pending job id the client polls.
	syncRowLimit = 25
	// duplicateWindow is how long an identical checksum maps back to the
	// existing job instead of creating a new one
	duplicateWindow = 24 * time.Hour
	// tenantJobCeiling bounds concurrent imports per tenant
	tenantJobCeiling = 10
	// slotTTL bounds slot leakage from crashed workers
	slotTTL = time.Hour
	// uploadURLExpiry is how long an issued signed URL stays valid
	uploadURLExpiry = time.Hour
	// signedURLRateLimit caps signed-url requests per user per window
	signedURLRateLimit  = 30
	signedURLRateWindow = time.Minute
)

type SignedURLRequest struct {
	Filename    string `json:"filename" validate:"required"`
	FileSize    int64  `json:"fileSize" validate:"required,gt=0"`
	ContentType string `json:"contentType"`
	Checksum    string `json:"checksum" validate:"required,len=64,hexadecimal"`
}

type SignedURLResponse struct {
	UploadURL  string            `json:"uploadUrl"`
	Fields     map[string]string `json:"fields"`
	ObjectPath string            `json:"objectPath"`
	MaxSizeMB  int               `json:"maxSizeMB"`
	ExpiresIn  int               `json:"expiresIn"`
}

// uploadMeta is stashed in Redis between the signed-url and notify steps so
// the declared filename and checksum survive the client's direct upload
type uploadMeta struct {
	Filename string    `json:"filename"`
	Checksum string    `json:"checksum"`
	UserID   uuid.UUID `json:"user_id"`
}

// TaskEnqueuer is the slice of asynq.Client the dispatcher needs
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher owns the upload protocol: issuing signed URLs, validating
// notified uploads and deciding between synchronous and queued processing.
type Dispatcher struct {
	jobs    repositories.ImportJobRepository
	runner  *Runner
	storage services.StorageService
	cache   caching.CacheService
	queue   TaskEnqueuer
	bucket  string
}

func NewDispatcher(
	jobs repositories.ImportJobRepository,
	runner *Runner,
	storage services.StorageService,
	cache caching.CacheService,
	queue TaskEnqueuer,
	bucket string,
) *Dispatcher {
	return &Dispatcher{
		jobs:    jobs,
		runner:  runner,
		storage: storage,
		cache:   cache,
		queue:   queue,
		bucket:  bucket,
	}
}

// RequestSignedURL validates the declared file metadata and issues a signed
// POST policy the client uploads the file against directly.
func (d *Dispatcher) RequestSignedURL(ctx context.Context, tenantID, userID uuid.UUID, req *SignedURLRequest) (*SignedURLResponse, error) {
	limited, err := d.cache.IsRateLimited(ctx, "signed-url:"+userID.String(), signedURLRateLimit, signedURLRateWindow)
	if err != nil {
		return nil, err
	}
	if limited {
		return nil, fmt.Errorf("%w: too many upload requests, retry in a minute", common.ErrRateLimited)
	}

	if err := ValidateFileMeta(req.Filename, req.FileSize, req.ContentType); err != nil {
		return nil, err
	}

	objectPath := fmt.Sprintf("imports/%s/%s/%s", tenantID, uuid.New(), path.Base(req.Filename))
	uploadURL, fields, err := d.storage.PresignedUploadPost(ctx, d.bucket, objectPath, MaxUploadBytes, uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("issue upload URL: %w", err)
	}

	meta, err := json.Marshal(uploadMeta{Filename: path.Base(req.Filename), Checksum: req.Checksum, UserID: userID})
	if err != nil {
		return nil, err
	}
	if err := d.cache.SetString(ctx, uploadMetaKey(objectPath), string(meta), uploadURLExpiry); err != nil {
		log.Printf("WARN: failed to stash upload metadata for %s: %v", objectPath, err)
	}

	return &SignedURLResponse{
		UploadURL:  uploadURL,
		Fields:     fields,
		ObjectPath: objectPath,
		MaxSizeMB:  MaxUploadMB,
		ExpiresIn:  int(uploadURLExpiry.Seconds()),
	}, nil
}

// Notify validates the uploaded object and dispatches processing. Uploads
// whose checksum matches a job created in the last 24 hours return that job
// instead of creating a new one, making accidental re-submission idempotent.
func (d *Dispatcher) Notify(ctx context.Context, tenantID, userID uuid.UUID, objectPath string) (*models.ImportJobSummary, error) {
	if objectPath == "" {
		return nil, fmt.Errorf("%w: objectPath is required", common.ErrValidation)
	}

	meta := d.loadUploadMeta(ctx, objectPath)

	size, _, err := d.storage.StatObject(ctx, d.bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: uploaded object %s", common.ErrNotFound, objectPath)
	}
	if size > MaxUploadBytes {
		return nil, fmt.Errorf("%w: file exceeds the %d MB limit", common.ErrValidation, MaxUploadMB)
	}

	obj, _, err := d.storage.GetObject(ctx, d.bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: uploaded object %s", common.ErrNotFound, objectPath)
	}
	data, err := io.ReadAll(io.LimitReader(obj, MaxUploadBytes+1))
	obj.Close()
	if err != nil {
		return nil, fmt.Errorf("read uploaded object: %w", err)
	}

	if err := ValidateContent(meta.Filename, data); err != nil {
		return nil, err
	}
	if err := VerifyChecksum(meta.Checksum, data); err != nil {
		return nil, err
	}
	checksum := Checksum(data)

	existing, err := d.jobs.FindRecentByChecksum(ctx, tenantID, checksum, time.Now().Add(-duplicateWindow))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		summary := Summarize(existing)
		summary.Duplicate = true
		return summary, nil
	}

	rows, err := ParseFile(meta.Filename, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	ok, err := d.cache.AcquireImportSlot(ctx, tenantID, tenantJobCeiling, slotTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: tenant has %d imports in flight, try again later", common.ErrConflict, tenantJobCeiling)
	}

	job := &models.ImportJob{
		ID:         uuid.New(),
		TenantID:   tenantID,
		UserID:     userID,
		Filename:   meta.Filename,
		ObjectPath: objectPath,
		Checksum:   checksum,
		Status:     models.JobPending,
		TotalRows:  len(rows),
	}
	if err := d.jobs.Create(ctx, job); err != nil {
		d.releaseSlot(ctx, tenantID)
		return nil, err
	}

	if len(rows) <= syncRowLimit {
		if runErr := d.runner.Run(ctx, tenantID, job.ID); runErr != nil {
			// Synchronous imports get no retry; systemic failure fails the
			// job in the response.
			if failErr := d.runner.Fail(ctx, tenantID, job.ID, runErr.Error()); failErr != nil {
				log.Printf("WARN: failed to mark job %s failed: %v", job.ID, failErr)
			}
		}
		finished, err := d.jobs.GetByID(ctx, tenantID, job.ID)
		if err != nil {
			return nil, err
		}
		return Summarize(finished), nil
	}

	task, err := NewImportTask(tenantID, job.ID)
	if err != nil {
		d.releaseSlot(ctx, tenantID)
		return nil, err
	}
	if _, err := d.queue.EnqueueContext(ctx, task, asynq.MaxRetry(importMaxRetry), asynq.Queue(importQueue)); err != nil {
		summary := fmt.Sprintf("failed to enqueue processing: %v", err)
		if failErr := d.runner.Fail(ctx, tenantID, job.ID, summary); failErr != nil {
			log.Printf("WARN: failed to mark job %s failed: %v", job.ID, failErr)
		}
		return nil, err
	}

	return Summarize(job), nil
}

func (d *Dispatcher) loadUploadMeta(ctx context.Context, objectPath string) uploadMeta {
	meta := uploadMeta{Filename: path.Base(objectPath)}
	raw, err := d.cache.GetString(ctx, uploadMetaKey(objectPath))
	if err != nil || raw == "" {
		return meta
	}
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		log.Printf("WARN: malformed upload metadata for %s: %v", objectPath, err)
		return uploadMeta{Filename: path.Base(objectPath)}
	}
	return meta
}

func (d *Dispatcher) releaseSlot(ctx context.Context, tenantID uuid.UUID) {
	if err := d.cache.ReleaseImportSlot(ctx, tenantID); err != nil {
		log.Printf("WARN: failed to release import slot for tenant %s: %v", tenantID, err)
	}
}

func uploadMetaKey(objectPath string) string {
	return "upload:" + objectPath
}
