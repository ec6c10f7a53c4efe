package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_parent_name" json:"name"`
	ParentID    uint           `gorm:"default:0;index;uniqueIndex:idx_parent_name" json:"parent_id"`
	Description string         `gorm:"type:varchar(500)" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
