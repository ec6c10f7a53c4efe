package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"artsstore/models"
	"artsstore/repositories"

	"gorm.io/gorm"
)

const (
	ProgressStatusQueued     = "queued"
	ProgressStatusProcessing = "processing"
	ProgressStatusCompleted  = "completed"
	ProgressStatusFailed     = "failed"
)

// ProgressView is what a polling client sees for one media task.
type ProgressView struct {
	Status   string              `json:"status"`
	Progress int                 `json:"progress"`
	Result   *models.StoredAsset `json:"result,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type ProgressService interface {
	Poll(ctx context.Context, id string) (ProgressView, error)
}

type progressService struct {
	tasks repositories.MediaTaskRepository
}

func NewProgressService(tasks repositories.MediaTaskRepository) ProgressService {
	return &progressService{tasks: tasks}
}

// Poll accepts either the upload ID or the task ID, because direct uploads
// are identified only by their task ID.
func (s *progressService) Poll(ctx context.Context, id string) (ProgressView, error) {
	task, err := s.tasks.GetByUploadID(ctx, nil, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		task, err = s.tasks.GetByTaskID(ctx, nil, id)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ProgressView{}, newAppError(http.StatusNotFound, "upload task not found", nil)
		}
		return ProgressView{}, newAppError(http.StatusInternalServerError, "failed to query upload task", err)
	}

	switch task.Status {
	case models.TaskStatusWaiting:
		return ProgressView{Status: ProgressStatusQueued, Progress: 0}, nil
	case models.TaskStatusActive:
		progress := task.Progress
		if progress == 0 {
			// The worker picked it up but has not reported yet.
			progress = 50
		}
		return ProgressView{Status: ProgressStatusProcessing, Progress: progress}, nil
	case models.TaskStatusCompleted:
		view := ProgressView{Status: ProgressStatusCompleted, Progress: 100}
		if task.Result != "" {
			var asset models.StoredAsset
			if err := json.Unmarshal([]byte(task.Result), &asset); err == nil {
				view.Result = &asset
			}
		}
		return view, nil
	case models.TaskStatusFailed:
		return ProgressView{Status: ProgressStatusFailed, Progress: task.Progress, Error: task.ErrorMessage}, nil
	default:
		return ProgressView{}, newAppError(http.StatusInternalServerError, "upload task in unknown state", nil)
	}
}
