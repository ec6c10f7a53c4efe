package services

import (
	"context"
	"log"
	"os"
	"time"

	"artsstore/chunkstore"
	"artsstore/config"
	"artsstore/logger"
	"artsstore/repositories"
)

// CleanupService runs the two background janitors: GC of completed task rows
// past their retention and eviction of abandoned chunk sessions. Failed task
// rows are never collected here, they stay visible for operators.
type CleanupService interface {
	Start()
	CollectCompletedTasks(ctx context.Context) (int, error)
	SweepChunkSessions() int
}

type cleanupService struct {
	tasks  repositories.MediaTaskRepository
	chunks *chunkstore.MemoryStore
}

func NewCleanupService(tasks repositories.MediaTaskRepository, chunks *chunkstore.MemoryStore) CleanupService {
	return &cleanupService{tasks: tasks, chunks: chunks}
}

func (s *cleanupService) Start() {
	go s.taskGCLoop()
	go s.sessionSweepLoop()
}

func (s *cleanupService) taskGCLoop() {
	interval := time.Duration(config.AppConfig.Queue.GCInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		n, err := s.CollectCompletedTasks(context.Background())
		if err != nil {
			log.Printf("task GC failed: %v", err)
			continue
		}
		if n > 0 {
			log.Printf("collected %d completed media tasks", n)
		}
	}
}

func (s *cleanupService) CollectCompletedTasks(ctx context.Context) (int, error) {
	retention := time.Duration(config.AppConfig.Queue.CompletedRetention) * time.Second
	cutoff := time.Now().Add(-retention)

	tasks, err := s.tasks.ListCompletedBefore(ctx, nil, cutoff)
	if err != nil {
		return 0, err
	}

	collected := 0
	for _, task := range tasks {
		if task.PayloadPath != "" {
			os.Remove(task.PayloadPath)
		}
		if err := s.tasks.DeleteByID(ctx, nil, task.ID); err != nil {
			log.Printf("failed to delete task %s: %v", task.TaskID, err)
			continue
		}
		collected++
	}
	return collected, nil
}

func (s *cleanupService) sessionSweepLoop() {
	interval := time.Duration(config.AppConfig.Queue.SessionSweepInterval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		if n := s.SweepChunkSessions(); n > 0 {
			log.Printf("evicted %d stale upload sessions", n)
		}
	}
}

func (s *cleanupService) SweepChunkSessions() int {
	n := s.chunks.Sweep(time.Now())
	if n > 0 {
		logger.Debugf("chunk sweep evicted %d sessions", n)
	}
	return n
}
