package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/givehub/mediakit/internal/media"
)

const (
	// ProcessMediaTask is scheduled for every asynchronous upload
	// (video, gifv, audio).
	ProcessMediaTask = "media:process"
)

// ProcessPayload is the only contract between the dispatcher and the
// worker; it must stay stable independent of queue technology.
type ProcessPayload struct {
	AttachmentID         string           `json:"attachment_id"`
	OriginalStagingPath  string           `json:"original_staging_path"`
	ThumbnailStagingPath string           `json:"thumbnail_staging_path,omitempty"`
	Description          string           `json:"description,omitempty"`
	FocusPoint           media.FocusPoint `json:"focus_point"`
}

// EnqueueProcess enqueues a media processing job. Failed jobs are not
// retried automatically: the worker records FAILED and an operator decides
// whether to resubmit.
func EnqueueProcess(ctx context.Context, client *asynq.Client, payload ProcessPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(ProcessMediaTask, data)
	if _, err := client.EnqueueContext(ctx, task, asynq.MaxRetry(0)); err != nil {
		return fmt.Errorf("enqueue process task: %w", err)
	}
	return nil
}
