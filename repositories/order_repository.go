package repositories

import (
	"context"

	"artsstore/models"

	"gorm.io/gorm"
)

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) applyFilter(q *gorm.DB, in ListOrdersInput) *gorm.DB {
	if in.UserID != 0 {
		q = q.Where("user_id = ?", in.UserID)
	}
	if in.Status != "" {
		q = q.Where("status = ?", in.Status)
	}
	return q
}

func (r *GormOrderRepository) Count(_ context.Context, tx *gorm.DB, in ListOrdersInput) (int64, error) {
	var count int64
	err := r.applyFilter(useTx(r.db, tx).Model(&models.Order{}), in).Count(&count).Error
	return count, err
}

func (r *GormOrderRepository) List(_ context.Context, tx *gorm.DB, in ListOrdersInput) ([]models.Order, error) {
	var orders []models.Order
	err := r.applyFilter(useTx(r.db, tx).Preload("Items"), in).
		Order("created_at desc").
		Offset(in.Offset).
		Limit(in.Limit).
		Find(&orders).Error
	return orders, err
}

func (r *GormOrderRepository) Create(_ context.Context, tx *gorm.DB, order *models.Order) error {
	return useTx(r.db, tx).Create(order).Error
}

func (r *GormOrderRepository) GetByOrderNo(_ context.Context, tx *gorm.DB, orderNo string) (models.Order, error) {
	var order models.Order
	err := useTx(r.db, tx).Preload("Items").Where("order_no = ?", orderNo).First(&order).Error
	return order, err
}

func (r *GormOrderRepository) GetByOrderNoAndUser(_ context.Context, tx *gorm.DB, orderNo string, userID uint) (models.Order, error) {
	var order models.Order
	err := useTx(r.db, tx).Preload("Items").Where("order_no = ? AND user_id = ?", orderNo, userID).First(&order).Error
	return order, err
}

func (r *GormOrderRepository) UpdateStatus(_ context.Context, tx *gorm.DB, orderNo string, status string) error {
	return useTx(r.db, tx).Model(&models.Order{}).Where("order_no = ?", orderNo).Update("status", status).Error
}
