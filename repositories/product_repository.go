package repositories

import (
	"context"

	"artsstore/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) applyFilter(q *gorm.DB, in ListProductsInput) *gorm.DB {
	if in.CategoryID != 0 {
		q = q.Where("category_id = ?", in.CategoryID)
	}
	if in.PublishedOnly {
		q = q.Where("published = ?", true)
	}
	return q
}

func (r *GormProductRepository) Count(_ context.Context, tx *gorm.DB, in ListProductsInput) (int64, error) {
	var count int64
	err := r.applyFilter(useTx(r.db, tx).Model(&models.Product{}), in).Count(&count).Error
	return count, err
}

func (r *GormProductRepository) List(_ context.Context, tx *gorm.DB, in ListProductsInput) ([]models.Product, error) {
	var products []models.Product
	err := r.applyFilter(useTx(r.db, tx), in).
		Order("created_at desc").
		Offset(in.Offset).
		Limit(in.Limit).
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) GetByID(_ context.Context, tx *gorm.DB, productID uint) (models.Product, error) {
	var product models.Product
	err := useTx(r.db, tx).First(&product, productID).Error
	return product, err
}

func (r *GormProductRepository) GetByIDForUpdate(_ context.Context, tx *gorm.DB, productID uint) (models.Product, error) {
	var product models.Product
	err := useTx(r.db, tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, productID).Error
	return product, err
}

func (r *GormProductRepository) Create(_ context.Context, tx *gorm.DB, product *models.Product) error {
	return useTx(r.db, tx).Create(product).Error
}

func (r *GormProductRepository) UpdateByID(_ context.Context, tx *gorm.DB, productID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Product{}).Where("id = ?", productID).Updates(updates).Error
}

func (r *GormProductRepository) AddStock(_ context.Context, tx *gorm.DB, productID uint, delta int) error {
	return useTx(r.db, tx).Model(&models.Product{}).Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *GormProductRepository) DeleteByID(_ context.Context, tx *gorm.DB, productID uint) error {
	return useTx(r.db, tx).Delete(&models.Product{}, productID).Error
}
