package repositories

import (
	"context"

	"artsstore/models"

	"gorm.io/gorm"
)

type GormCategoryRepository struct {
	db *gorm.DB
}

func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

func (r *GormCategoryRepository) List(_ context.Context, tx *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := useTx(r.db, tx).Order("parent_id asc, name asc").Find(&categories).Error
	return categories, err
}

func (r *GormCategoryRepository) GetByID(_ context.Context, tx *gorm.DB, categoryID uint) (models.Category, error) {
	var category models.Category
	err := useTx(r.db, tx).First(&category, categoryID).Error
	return category, err
}

func (r *GormCategoryRepository) CountByParentAndName(_ context.Context, tx *gorm.DB, parentID uint, name string, excludeID uint) (int64, error) {
	var count int64
	q := useTx(r.db, tx).Model(&models.Category{}).Where("parent_id = ? AND name = ?", parentID, name)
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}
	err := q.Count(&count).Error
	return count, err
}

func (r *GormCategoryRepository) Create(_ context.Context, tx *gorm.DB, category *models.Category) error {
	return useTx(r.db, tx).Create(category).Error
}

func (r *GormCategoryRepository) UpdateByID(_ context.Context, tx *gorm.DB, categoryID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Category{}).Where("id = ?", categoryID).Updates(updates).Error
}

func (r *GormCategoryRepository) DeleteByID(_ context.Context, tx *gorm.DB, categoryID uint) error {
	return useTx(r.db, tx).Delete(&models.Category{}, categoryID).Error
}

func (r *GormCategoryRepository) CountProducts(_ context.Context, tx *gorm.DB, categoryID uint) (int64, error) {
	var count int64
	err := useTx(r.db, tx).Model(&models.Product{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
