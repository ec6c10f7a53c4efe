package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"artsstore/logger"
	"artsstore/models"
	"artsstore/repositories"

	"gorm.io/gorm"
)

type WorkerOptions struct {
	ImageWorkers int
	ModelWorkers int
	BackoffBase  time.Duration
	PopTimeout   time.Duration
}

// WorkerPool pulls tasks off the broker and runs processors, fully outside
// the request-handling path. Model ingests are popped before image work; a
// per-kind semaphore caps how many of each kind run at once.
type WorkerPool struct {
	broker     Broker
	tasks      repositories.MediaTaskRepository
	processors map[string]Processor
	opts       WorkerOptions

	sems   map[string]chan struct{}
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorkerPool(broker Broker, tasks repositories.MediaTaskRepository, processors map[string]Processor, opts WorkerOptions) *WorkerPool {
	if opts.ImageWorkers <= 0 {
		opts.ImageWorkers = 5
	}
	if opts.ModelWorkers <= 0 {
		opts.ModelWorkers = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	if opts.PopTimeout <= 0 {
		opts.PopTimeout = 2 * time.Second
	}

	return &WorkerPool{
		broker:     broker,
		tasks:      tasks,
		processors: processors,
		opts:       opts,
		sems: map[string]chan struct{}{
			models.TaskKindImageOptimize: make(chan struct{}, opts.ImageWorkers),
			models.TaskKindModelIngest:   make(chan struct{}, opts.ModelWorkers),
		},
	}
}

func (p *WorkerPool) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	dispatchers := p.opts.ImageWorkers + p.opts.ModelWorkers
	for i := 0; i < dispatchers; i++ {
		p.wg.Add(1)
		go p.dispatchLoop(ctx)
	}

	log.Printf("media worker pool started: %d dispatchers (%d image / %d model slots)",
		dispatchers, p.opts.ImageWorkers, p.opts.ModelWorkers)
}

func (p *WorkerPool) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
}

func (p *WorkerPool) dispatchLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		key, taskID, err := p.broker.Pop(ctx, p.opts.PopTimeout, popOrder...)
		if err != nil {
			if errors.Is(err, ErrPopTimeout) || ctx.Err() != nil {
				continue
			}
			log.Printf("broker pop failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		kind := kindFromKey(key)
		sem, ok := p.sems[kind]
		if !ok {
			log.Printf("dropping task %s with unknown kind key %s", taskID, key)
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			// Put the task back so a later run picks it up.
			_ = p.broker.Push(context.Background(), key, taskID)
			return
		}
		p.runTask(ctx, kind, taskID)
		<-sem
	}
}

func kindFromKey(key string) string {
	switch key {
	case keyModelIngest:
		return models.TaskKindModelIngest
	case keyImageOptimize:
		return models.TaskKindImageOptimize
	default:
		return ""
	}
}

func (p *WorkerPool) runTask(ctx context.Context, kind string, taskID string) {
	task, err := p.tasks.GetByTaskID(ctx, nil, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debugf("task %s vanished before execution", taskID)
			return
		}
		log.Printf("failed to load task %s: %v", taskID, err)
		return
	}

	proc, ok := p.processors[kind]
	if !ok {
		p.failTask(ctx, &task, "no processor registered for kind "+kind)
		return
	}

	_ = p.tasks.UpdateByTaskID(ctx, nil, taskID, map[string]interface{}{
		"status":   models.TaskStatusActive,
		"progress": 0,
	})

	data, err := os.ReadFile(task.PayloadPath)
	if err != nil {
		p.retryOrFail(ctx, &task, "failed to read task payload: "+err.Error())
		return
	}

	// Progress is monotonic within one attempt; stale reports are dropped.
	last := 0
	report := func(percent int) {
		if percent < last {
			return
		}
		if percent > 100 {
			percent = 100
		}
		last = percent
		_ = p.tasks.UpdateByTaskID(ctx, nil, taskID, map[string]interface{}{"progress": percent})
	}

	asset, err := proc.Process(ctx, ProcessInput{
		TaskID:   taskID,
		FileName: task.FileName,
		Folder:   task.Folder,
		Data:     data,
	}, report)
	if err != nil {
		p.retryOrFail(ctx, &task, err.Error())
		return
	}

	resultJSON, err := json.Marshal(asset)
	if err != nil {
		p.failTask(ctx, &task, "failed to encode result: "+err.Error())
		return
	}

	now := time.Now()
	_ = p.tasks.UpdateByTaskID(ctx, nil, taskID, map[string]interface{}{
		"status":       models.TaskStatusCompleted,
		"progress":     100,
		"result":       string(resultJSON),
		"completed_at": &now,
	})
	_ = os.Remove(task.PayloadPath)
	logger.Debugf("task %s (%s) completed: %s", taskID, kind, asset.PublicID)
}

// retryOrFail re-queues the task with exponential backoff until attempts are
// exhausted, then marks it terminally failed. Failed rows are kept for
// operator inspection.
func (p *WorkerPool) retryOrFail(ctx context.Context, task *models.MediaTask, reason string) {
	attempt := task.RetryCount + 1
	if attempt >= task.MaxRetries {
		p.failTask(ctx, task, reason)
		return
	}

	_ = p.tasks.UpdateByTaskID(ctx, nil, task.TaskID, map[string]interface{}{
		"status":        models.TaskStatusWaiting,
		"retry_count":   attempt,
		"error_message": reason,
	})

	key, err := kindKey(task.Kind)
	if err != nil {
		p.failTask(ctx, task, reason)
		return
	}

	backoff := p.opts.BackoffBase * time.Duration(1<<(attempt-1))
	taskID := task.TaskID
	log.Printf("task %s attempt %d failed, retrying in %s: %s", taskID, attempt, backoff, reason)
	time.AfterFunc(backoff, func() {
		if err := p.broker.Push(context.Background(), key, taskID); err != nil {
			log.Printf("failed to re-queue task %s: %v", taskID, err)
		}
	})
}

func (p *WorkerPool) failTask(ctx context.Context, task *models.MediaTask, reason string) {
	log.Printf("task %s failed terminally: %s", task.TaskID, reason)
	_ = p.tasks.UpdateByTaskID(ctx, nil, task.TaskID, map[string]interface{}{
		"status":        models.TaskStatusFailed,
		"error_message": reason,
	})
	_ = os.Remove(task.PayloadPath)
}
