package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusShipped   = "shipped"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type Order struct {
	ID         uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNo    string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"order_no"`
	UserID     uint           `gorm:"not null;index" json:"user_id"`
	Status     string         `gorm:"type:varchar(20);default:pending;index" json:"status"`
	TotalCents int64          `gorm:"not null" json:"total_cents"`
	Address    string         `gorm:"type:varchar(500)" json:"address"`
	Items      []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem snapshots name and price at purchase time.
type OrderItem struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    uint   `gorm:"not null;index" json:"order_id"`
	ProductID  uint   `gorm:"not null;index" json:"product_id"`
	Name       string `gorm:"type:varchar(255);not null" json:"name"`
	PriceCents int64  `gorm:"not null" json:"price_cents"`
	Quantity   int    `gorm:"not null" json:"quantity"`
}
