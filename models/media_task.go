package models

import "time"

const (
	TaskKindImageOptimize = "image-optimize"
	TaskKindModelIngest   = "model-ingest"

	TaskStatusWaiting   = "waiting"
	TaskStatusActive    = "active"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// MediaTask is one unit of background media work. PayloadPath points at the
// spooled input buffer on disk; Result holds the stored-asset JSON once done.
type MediaTask struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID       string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"task_id"`
	UploadID     string     `gorm:"type:varchar(64);index" json:"upload_id"`
	Kind         string     `gorm:"type:varchar(30);not null;index" json:"kind"`
	Priority     int        `gorm:"default:1" json:"priority"`
	Status       string     `gorm:"type:varchar(20);default:waiting;index" json:"status"`
	Progress     int        `gorm:"default:0" json:"progress"`
	FileName     string     `gorm:"type:varchar(255);not null" json:"file_name"`
	Folder       string     `gorm:"type:varchar(255)" json:"folder"`
	PayloadPath  string     `gorm:"type:varchar(500)" json:"payload_path"`
	PayloadBytes int64      `json:"payload_bytes"`
	Result       string     `gorm:"type:text" json:"result"`
	ErrorMessage string     `gorm:"type:text" json:"error_message"`
	RetryCount   int        `gorm:"default:0" json:"retry_count"`
	MaxRetries   int        `gorm:"default:3" json:"max_retries"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// TaskPriority maps a task kind to its queue priority. Model ingests are
// rarer, larger, and block AR features, so they outrank image work.
func TaskPriority(kind string) int {
	if kind == TaskKindModelIngest {
		return 2
	}
	return 1
}
