package queue

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"artsstore/models"
)

func spoolTask(t *testing.T, repo *fakeTaskRepo, dir, taskID, kind string, payload []byte, maxRetries int) *models.MediaTask {
	t.Helper()

	payloadPath := filepath.Join(dir, taskID)
	if err := os.WriteFile(payloadPath, payload, 0o644); err != nil {
		t.Fatalf("failed to spool payload: %v", err)
	}

	task := &models.MediaTask{
		TaskID:      taskID,
		Kind:        kind,
		Priority:    models.TaskPriority(kind),
		Status:      models.TaskStatusWaiting,
		FileName:    "f" + filepath.Ext(taskID),
		PayloadPath: payloadPath,
		MaxRetries:  maxRetries,
	}
	if err := repo.Create(context.Background(), nil, task); err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return task
}

func waitForStatus(t *testing.T, repo *fakeTaskRepo, taskID, status string) models.MediaTask {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		task := repo.get(taskID)
		if task.Status == status {
			return task
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached status %q, last state %q", taskID, status, repo.get(taskID).Status)
	return models.MediaTask{}
}

func TestWorkerPoolCompletesTask(t *testing.T) {
	broker := newFakeBroker()
	repo := newFakeTaskRepo()
	dir := t.TempDir()

	task := spoolTask(t, repo, dir, "task-ok", models.TaskKindImageOptimize, []byte("pixels"), 3)
	broker.Push(context.Background(), keyImageOptimize, task.TaskID)

	processors := map[string]Processor{
		models.TaskKindImageOptimize: &funcProcessor{fn: func(_ context.Context, in ProcessInput, report func(int)) (models.StoredAsset, error) {
			if string(in.Data) != "pixels" {
				t.Errorf("worker did not rematerialize the payload: %q", in.Data)
			}
			report(10)
			report(90)
			report(100)
			return models.StoredAsset{URL: "http://assets/t.jpg", PublicID: "images/t.jpg", Format: "jpg"}, nil
		}},
	}

	pool := NewWorkerPool(broker, repo, processors, WorkerOptions{ImageWorkers: 1, ModelWorkers: 1, BackoffBase: time.Millisecond, PopTimeout: 10 * time.Millisecond})
	pool.Start()
	defer pool.Stop()

	done := waitForStatus(t, repo, task.TaskID, models.TaskStatusCompleted)
	if done.Progress != 100 {
		t.Fatalf("completed task should report 100, got %d", done.Progress)
	}
	if done.Result == "" {
		t.Fatalf("completed task should carry the result JSON")
	}
	if done.CompletedAt == nil {
		t.Fatalf("completed task should carry a completion timestamp")
	}
	if _, err := os.Stat(task.PayloadPath); !os.IsNotExist(err) {
		t.Fatalf("payload file should be removed after completion")
	}

	repo.mu.Lock()
	history := append([]int(nil), repo.progress[task.TaskID]...)
	repo.mu.Unlock()
	last := -1
	for _, p := range history {
		if p < last {
			t.Fatalf("progress went backwards: %v", history)
		}
		last = p
	}
	if last != 100 {
		t.Fatalf("progress history should end at 100: %v", history)
	}
}

func TestWorkerPoolRetriesThenFails(t *testing.T) {
	broker := newFakeBroker()
	repo := newFakeTaskRepo()
	dir := t.TempDir()

	task := spoolTask(t, repo, dir, "task-bad", models.TaskKindImageOptimize, []byte("junk"), 2)
	broker.Push(context.Background(), keyImageOptimize, task.TaskID)

	var attempts atomic.Int32
	processors := map[string]Processor{
		models.TaskKindImageOptimize: &funcProcessor{fn: func(context.Context, ProcessInput, func(int)) (models.StoredAsset, error) {
			attempts.Add(1)
			return models.StoredAsset{}, errors.New("corrupt input")
		}},
	}

	pool := NewWorkerPool(broker, repo, processors, WorkerOptions{ImageWorkers: 1, ModelWorkers: 1, BackoffBase: time.Millisecond, PopTimeout: 10 * time.Millisecond})
	pool.Start()
	defer pool.Stop()

	failed := waitForStatus(t, repo, task.TaskID, models.TaskStatusFailed)
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts for max retries 2, got %d", got)
	}
	if failed.ErrorMessage == "" {
		t.Fatalf("failed task should keep the failure reason")
	}
	if failed.RetryCount != 1 {
		t.Fatalf("expected one recorded retry, got %d", failed.RetryCount)
	}
}

func TestWorkerPoolRecoversAfterTransientFailure(t *testing.T) {
	broker := newFakeBroker()
	repo := newFakeTaskRepo()
	dir := t.TempDir()

	task := spoolTask(t, repo, dir, "task-flaky", models.TaskKindModelIngest, []byte("glb"), 3)
	broker.Push(context.Background(), keyModelIngest, task.TaskID)

	var attempts atomic.Int32
	processors := map[string]Processor{
		models.TaskKindModelIngest: &funcProcessor{fn: func(context.Context, ProcessInput, func(int)) (models.StoredAsset, error) {
			if attempts.Add(1) == 1 {
				return models.StoredAsset{}, errors.New("store hiccup")
			}
			return models.StoredAsset{URL: "http://assets/m.glb", PublicID: "models/m.glb"}, nil
		}},
	}

	pool := NewWorkerPool(broker, repo, processors, WorkerOptions{ImageWorkers: 1, ModelWorkers: 1, BackoffBase: time.Millisecond, PopTimeout: 10 * time.Millisecond})
	pool.Start()
	defer pool.Stop()

	done := waitForStatus(t, repo, task.TaskID, models.TaskStatusCompleted)
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected the second attempt to succeed, got %d attempts", got)
	}
	if done.RetryCount != 1 {
		t.Fatalf("expected retry_count 1, got %d", done.RetryCount)
	}
}
