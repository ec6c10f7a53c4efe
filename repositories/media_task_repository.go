package repositories

import (
	"context"
	"time"

	"artsstore/models"

	"gorm.io/gorm"
)

type GormMediaTaskRepository struct {
	db *gorm.DB
}

func NewGormMediaTaskRepository(db *gorm.DB) *GormMediaTaskRepository {
	return &GormMediaTaskRepository{db: db}
}

func (r *GormMediaTaskRepository) Create(_ context.Context, tx *gorm.DB, task *models.MediaTask) error {
	return useTx(r.db, tx).Create(task).Error
}

func (r *GormMediaTaskRepository) GetByTaskID(_ context.Context, tx *gorm.DB, taskID string) (models.MediaTask, error) {
	var task models.MediaTask
	err := useTx(r.db, tx).Where("task_id = ?", taskID).First(&task).Error
	return task, err
}

func (r *GormMediaTaskRepository) GetByUploadID(_ context.Context, tx *gorm.DB, uploadID string) (models.MediaTask, error) {
	var task models.MediaTask
	err := useTx(r.db, tx).Where("upload_id = ?", uploadID).Order("created_at desc").First(&task).Error
	return task, err
}

func (r *GormMediaTaskRepository) UpdateByTaskID(_ context.Context, tx *gorm.DB, taskID string, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.MediaTask{}).Where("task_id = ?", taskID).Updates(updates).Error
}

func (r *GormMediaTaskRepository) ListCompletedBefore(_ context.Context, tx *gorm.DB, cutoff time.Time) ([]models.MediaTask, error) {
	var tasks []models.MediaTask
	err := useTx(r.db, tx).
		Where("status = ? AND completed_at IS NOT NULL AND completed_at < ?", models.TaskStatusCompleted, cutoff).
		Find(&tasks).Error
	return tasks, err
}

func (r *GormMediaTaskRepository) DeleteByID(_ context.Context, tx *gorm.DB, id uint) error {
	return useTx(r.db, tx).Delete(&models.MediaTask{}, id).Error
}
