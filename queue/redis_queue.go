package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"artsstore/models"
	"artsstore/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	keyModelIngest   = "mediaq:model-ingest"
	keyImageOptimize = "mediaq:image-optimize"
)

// popOrder lists broker keys highest priority first.
var popOrder = []string{keyModelIngest, keyImageOptimize}

func kindKey(kind string) (string, error) {
	switch kind {
	case models.TaskKindModelIngest:
		return keyModelIngest, nil
	case models.TaskKindImageOptimize:
		return keyImageOptimize, nil
	default:
		return "", ErrUnknownKind
	}
}

// BrokerQueue is the broker-backed Queue. Task state lives in the media_tasks
// table; the broker only carries task IDs. Payload bytes are spooled to disk
// so broker values stay small and the worker can re-materialize the buffer.
type BrokerQueue struct {
	broker     Broker
	tasks      repositories.MediaTaskRepository
	spoolDir   string
	maxRetries int
}

func NewBrokerQueue(broker Broker, tasks repositories.MediaTaskRepository, spoolDir string, maxRetries int) *BrokerQueue {
	return &BrokerQueue{broker: broker, tasks: tasks, spoolDir: spoolDir, maxRetries: maxRetries}
}

func (q *BrokerQueue) Available(ctx context.Context) bool {
	return q.broker.Ping(ctx) == nil
}

func (q *BrokerQueue) Submit(ctx context.Context, in SubmitInput) (string, error) {
	key, err := kindKey(in.Kind)
	if err != nil {
		return "", err
	}
	if !q.Available(ctx) {
		return "", ErrUnavailable
	}

	taskID := uuid.New().String()

	if err := os.MkdirAll(q.spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool dir: %w", err)
	}
	payloadPath := filepath.Join(q.spoolDir, taskID)
	if err := os.WriteFile(payloadPath, in.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to spool task payload: %w", err)
	}

	task := models.MediaTask{
		TaskID:       taskID,
		UploadID:     in.UploadID,
		Kind:         in.Kind,
		Priority:     models.TaskPriority(in.Kind),
		Status:       models.TaskStatusWaiting,
		FileName:     in.FileName,
		Folder:       in.Folder,
		PayloadPath:  payloadPath,
		PayloadBytes: int64(len(in.Data)),
		MaxRetries:   q.maxRetries,
	}
	if err := q.tasks.Create(ctx, nil, &task); err != nil {
		_ = os.Remove(payloadPath)
		return "", fmt.Errorf("failed to create task record: %w", err)
	}

	if err := q.broker.Push(ctx, key, taskID); err != nil {
		_ = q.tasks.UpdateByTaskID(ctx, nil, taskID, map[string]interface{}{
			"status":        models.TaskStatusFailed,
			"error_message": "broker push failed: " + err.Error(),
		})
		_ = os.Remove(payloadPath)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return taskID, nil
}

func (q *BrokerQueue) Status(ctx context.Context, taskID string) (*TaskStatus, error) {
	task, err := q.tasks.GetByTaskID(ctx, nil, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &TaskStatus{
		State:         task.Status,
		Progress:      task.Progress,
		Result:        task.Result,
		FailureReason: task.ErrorMessage,
	}, nil
}
