package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	TypeImportProcess = "import:process"

	importQueue    = "imports"
	importMaxRetry = 3
)

type ImportTaskPayload struct {
	TenantID uuid.UUID `json:"tenant_id"`
	JobID    uuid.UUID `json:"job_id"`
}

func NewImportTask(tenantID, jobID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(ImportTaskPayload{TenantID: tenantID, JobID: jobID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeImportProcess, payload), nil
}

// TaskHandler adapts the Runner to asynq. Returning an error triggers a
// retry; on the last attempt the job is marked failed instead so it does not
// stay in processing forever.
type TaskHandler struct {
	runner *Runner
}

func NewTaskHandler(runner *Runner) *TaskHandler {
	return &TaskHandler{runner: runner}
}

func (h *TaskHandler) HandleImportTask(ctx context.Context, t *asynq.Task) error {
	var payload ImportTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal import payload: %v: %w", err, asynq.SkipRetry)
	}

	err := h.runner.Run(ctx, payload.TenantID, payload.JobID)
	if err == nil {
		return nil
	}

	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	if retried >= maxRetry {
		log.Printf("import job %s exhausted retries: %v", payload.JobID, err)
		summary := fmt.Sprintf("processing failed after %d attempts: %v", retried+1, err)
		if failErr := h.runner.Fail(ctx, payload.TenantID, payload.JobID, summary); failErr != nil {
			log.Printf("WARN: failed to mark job %s failed: %v", payload.JobID, failErr)
		}
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log.Printf("import job %s attempt %d failed, will retry: %v", payload.JobID, retried+1, err)
	return err
}
