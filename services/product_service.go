package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"artsstore/config"
	"artsstore/models"
	"artsstore/repositories"

	"gorm.io/gorm"
)

type ProductInput struct {
	Name        string
	Description string
	PriceCents  int64
	Stock       int
	CategoryID  uint
	Images      []models.StoredAsset
	ModelAsset  *models.StoredAsset
	Published   *bool
}

type ListProductsQuery struct {
	CategoryID    uint
	PublishedOnly bool
	Page          int
	PageSize      int
}

type ProductPage struct {
	Items    []models.Product
	Page     int
	PageSize int
	Total    int64
}

type ProductService interface {
	ListProducts(ctx context.Context, q ListProductsQuery) (ProductPage, error)
	GetProduct(ctx context.Context, productID uint, publishedOnly bool) (models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (models.Product, error)
	UpdateProduct(ctx context.Context, productID uint, in ProductInput) (models.Product, error)
	DeleteProduct(ctx context.Context, productID uint) error
}

type productService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
}

func NewProductService(products repositories.ProductRepository, categories repositories.CategoryRepository) ProductService {
	return &productService{products: products, categories: categories}
}

func normalizePage(page, pageSize int) (int, int) {
	cfg := config.AppConfig.Pagination
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = cfg.DefaultPageSize
	}
	if pageSize > cfg.MaxPageSize {
		pageSize = cfg.MaxPageSize
	}
	return page, pageSize
}

func (s *productService) ListProducts(ctx context.Context, q ListProductsQuery) (ProductPage, error) {
	page, pageSize := normalizePage(q.Page, q.PageSize)
	in := repositories.ListProductsInput{
		CategoryID:    q.CategoryID,
		PublishedOnly: q.PublishedOnly,
		Offset:        (page - 1) * pageSize,
		Limit:         pageSize,
	}

	total, err := s.products.Count(ctx, nil, in)
	if err != nil {
		return ProductPage{}, newAppError(http.StatusInternalServerError, "failed to count products", err)
	}
	items, err := s.products.List(ctx, nil, in)
	if err != nil {
		return ProductPage{}, newAppError(http.StatusInternalServerError, "failed to list products", err)
	}

	return ProductPage{Items: items, Page: page, PageSize: pageSize, Total: total}, nil
}

func (s *productService) GetProduct(ctx context.Context, productID uint, publishedOnly bool) (models.Product, error) {
	product, err := s.products.GetByID(ctx, nil, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, newAppError(http.StatusNotFound, "product not found", nil)
		}
		return models.Product{}, newAppError(http.StatusInternalServerError, "failed to query product", err)
	}
	if publishedOnly && !product.Published {
		return models.Product{}, newAppError(http.StatusNotFound, "product not found", nil)
	}
	return product, nil
}

func (s *productService) CreateProduct(ctx context.Context, in ProductInput) (models.Product, error) {
	if in.Name == "" {
		return models.Product{}, newAppError(http.StatusBadRequest, "product name is required", nil)
	}
	if in.PriceCents < 0 {
		return models.Product{}, newAppError(http.StatusBadRequest, "product price cannot be negative", nil)
	}
	if in.CategoryID != 0 {
		if _, err := s.categories.GetByID(ctx, nil, in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Product{}, newAppError(http.StatusNotFound, "category not found", nil)
			}
			return models.Product{}, newAppError(http.StatusInternalServerError, "failed to query category", err)
		}
	}

	images, modelAsset, err := encodeAssets(in.Images, in.ModelAsset)
	if err != nil {
		return models.Product{}, newAppError(http.StatusInternalServerError, "failed to encode product assets", err)
	}

	product := models.Product{
		Name:        in.Name,
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Stock:       in.Stock,
		CategoryID:  in.CategoryID,
		Images:      images,
		ModelAsset:  modelAsset,
	}
	if in.Published != nil {
		product.Published = *in.Published
	}

	if err := s.products.Create(ctx, nil, &product); err != nil {
		return models.Product{}, newAppError(http.StatusInternalServerError, "failed to create product", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, productID uint, in ProductInput) (models.Product, error) {
	product, err := s.products.GetByID(ctx, nil, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, newAppError(http.StatusNotFound, "product not found", nil)
		}
		return models.Product{}, newAppError(http.StatusInternalServerError, "failed to query product", err)
	}

	updates := map[string]interface{}{}
	if in.Name != "" {
		updates["name"] = in.Name
		product.Name = in.Name
	}
	if in.Description != "" {
		updates["description"] = in.Description
		product.Description = in.Description
	}
	if in.PriceCents > 0 {
		updates["price_cents"] = in.PriceCents
		product.PriceCents = in.PriceCents
	}
	if in.Stock >= 0 {
		updates["stock"] = in.Stock
		product.Stock = in.Stock
	}
	if in.CategoryID != 0 {
		if _, err := s.categories.GetByID(ctx, nil, in.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Product{}, newAppError(http.StatusNotFound, "category not found", nil)
			}
			return models.Product{}, newAppError(http.StatusInternalServerError, "failed to query category", err)
		}
		updates["category_id"] = in.CategoryID
		product.CategoryID = in.CategoryID
	}
	if in.Images != nil || in.ModelAsset != nil {
		images, modelAsset, err := encodeAssets(in.Images, in.ModelAsset)
		if err != nil {
			return models.Product{}, newAppError(http.StatusInternalServerError, "failed to encode product assets", err)
		}
		if in.Images != nil {
			updates["images"] = images
			product.Images = images
		}
		if in.ModelAsset != nil {
			updates["model_asset"] = modelAsset
			product.ModelAsset = modelAsset
		}
	}
	if in.Published != nil {
		updates["published"] = *in.Published
		product.Published = *in.Published
	}

	if len(updates) == 0 {
		return product, nil
	}
	if err := s.products.UpdateByID(ctx, nil, productID, updates); err != nil {
		return models.Product{}, newAppError(http.StatusInternalServerError, "failed to update product", err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, productID uint) error {
	if _, err := s.products.GetByID(ctx, nil, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "product not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "failed to query product", err)
	}
	if err := s.products.DeleteByID(ctx, nil, productID); err != nil {
		return newAppError(http.StatusInternalServerError, "failed to delete product", err)
	}
	return nil
}

func encodeAssets(images []models.StoredAsset, modelAsset *models.StoredAsset) (string, string, error) {
	imagesJSON := ""
	if images != nil {
		b, err := json.Marshal(images)
		if err != nil {
			return "", "", err
		}
		imagesJSON = string(b)
	}

	modelJSON := ""
	if modelAsset != nil {
		b, err := json.Marshal(modelAsset)
		if err != nil {
			return "", "", err
		}
		modelJSON = string(b)
	}
	return imagesJSON, modelJSON, nil
}
