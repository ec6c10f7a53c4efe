package queue

import (
	"context"
	"errors"

	"artsstore/models"
)

// ErrUnavailable is the fast-fail submission error returned while the broker
// is unreachable. Callers are expected to fall back to inline processing.
var ErrUnavailable = errors.New("task queue unavailable")

var ErrUnknownKind = errors.New("unknown task kind")

type SubmitInput struct {
	Kind     string
	UploadID string
	FileName string
	Folder   string
	Data     []byte
}

// TaskStatus is the queue-side view of one task. State follows
// models.TaskStatus*; Result carries the stored-asset JSON once completed.
type TaskStatus struct {
	State         string
	Progress      int
	Result        string
	FailureReason string
}

// Queue is the background dispatch capability. Submit enqueues and returns
// immediately; it never blocks on task execution. Status returns nil for
// task IDs that never existed or were garbage-collected after completion.
type Queue interface {
	Available(ctx context.Context) bool
	Submit(ctx context.Context, in SubmitInput) (string, error)
	Status(ctx context.Context, taskID string) (*TaskStatus, error)
}

type ProcessInput struct {
	TaskID   string
	FileName string
	Folder   string
	Data     []byte
}

// Processor turns a materialized file buffer into a stored asset. Processors
// know nothing about chunking or queueing; report carries coarse progress
// milestones back to whoever is watching.
type Processor interface {
	Process(ctx context.Context, in ProcessInput, report func(percent int)) (models.StoredAsset, error)
}
