package models

import (
	"time"

	"gorm.io/gorm"
)

// Product.Images holds a JSON array of stored-asset descriptors; ModelAsset
// holds one descriptor for the AR model, when the product has one.
type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	PriceCents  int64          `gorm:"not null" json:"price_cents"`
	Stock       int            `gorm:"default:0" json:"stock"`
	CategoryID  uint           `gorm:"index" json:"category_id"`
	Images      string         `gorm:"type:text" json:"images"`
	ModelAsset  string         `gorm:"type:text" json:"model_asset"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
