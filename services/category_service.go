package services

import (
	"context"
	"errors"
	"net/http"

	"artsstore/models"
	"artsstore/repositories"

	"gorm.io/gorm"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string, parentID uint, description string) (models.Category, error)
	UpdateCategory(ctx context.Context, categoryID uint, name, description string) (models.Category, error)
	DeleteCategory(ctx context.Context, categoryID uint) error
}

type categoryService struct {
	categories repositories.CategoryRepository
}

func NewCategoryService(categories repositories.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	list, err := s.categories.List(ctx, nil)
	if err != nil {
		return nil, newAppError(http.StatusInternalServerError, "failed to list categories", err)
	}
	return list, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, name string, parentID uint, description string) (models.Category, error) {
	if parentID != 0 {
		if _, err := s.categories.GetByID(ctx, nil, parentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Category{}, newAppError(http.StatusNotFound, "parent category not found", nil)
			}
			return models.Category{}, newAppError(http.StatusInternalServerError, "failed to query parent category", err)
		}
	}

	count, err := s.categories.CountByParentAndName(ctx, nil, parentID, name, 0)
	if err != nil {
		return models.Category{}, newAppError(http.StatusInternalServerError, "failed to check category name", err)
	}
	if count > 0 {
		return models.Category{}, newAppError(http.StatusBadRequest, "category with the same name already exists", nil)
	}

	category := models.Category{Name: name, ParentID: parentID, Description: description}
	if err := s.categories.Create(ctx, nil, &category); err != nil {
		return models.Category{}, newAppError(http.StatusInternalServerError, "failed to create category", err)
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, categoryID uint, name, description string) (models.Category, error) {
	category, err := s.categories.GetByID(ctx, nil, categoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Category{}, newAppError(http.StatusNotFound, "category not found", nil)
		}
		return models.Category{}, newAppError(http.StatusInternalServerError, "failed to query category", err)
	}

	if name != "" && name != category.Name {
		count, err := s.categories.CountByParentAndName(ctx, nil, category.ParentID, name, category.ID)
		if err != nil {
			return models.Category{}, newAppError(http.StatusInternalServerError, "failed to check category name", err)
		}
		if count > 0 {
			return models.Category{}, newAppError(http.StatusBadRequest, "category with the same name already exists", nil)
		}
		category.Name = name
	}
	if description != "" {
		category.Description = description
	}

	updates := map[string]interface{}{"name": category.Name, "description": category.Description}
	if err := s.categories.UpdateByID(ctx, nil, category.ID, updates); err != nil {
		return models.Category{}, newAppError(http.StatusInternalServerError, "failed to update category", err)
	}
	return category, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, categoryID uint) error {
	if _, err := s.categories.GetByID(ctx, nil, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "category not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query category", err)
	}

	count, err := s.categories.CountProducts(ctx, nil, categoryID)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "failed to check category products", err)
	}
	if count > 0 {
		return newAppError(http.StatusBadRequest, "category still has products", nil)
	}

	if err := s.categories.DeleteByID(ctx, nil, categoryID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete category", err)
	}
	return nil
}
