package repositories

import (
	"context"
	"time"

	"artsstore/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByUsername(ctx context.Context, username string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
}

type CategoryRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]models.Category, error)
	GetByID(ctx context.Context, tx *gorm.DB, categoryID uint) (models.Category, error)
	CountByParentAndName(ctx context.Context, tx *gorm.DB, parentID uint, name string, excludeID uint) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	UpdateByID(ctx context.Context, tx *gorm.DB, categoryID uint, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, categoryID uint) error
	CountProducts(ctx context.Context, tx *gorm.DB, categoryID uint) (int64, error)
}

type ListProductsInput struct {
	CategoryID    uint
	PublishedOnly bool
	Offset        int
	Limit         int
}

type ProductRepository interface {
	Count(ctx context.Context, tx *gorm.DB, in ListProductsInput) (int64, error)
	List(ctx context.Context, tx *gorm.DB, in ListProductsInput) ([]models.Product, error)
	GetByID(ctx context.Context, tx *gorm.DB, productID uint) (models.Product, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, productID uint) (models.Product, error)
	Create(ctx context.Context, tx *gorm.DB, product *models.Product) error
	UpdateByID(ctx context.Context, tx *gorm.DB, productID uint, updates map[string]interface{}) error
	AddStock(ctx context.Context, tx *gorm.DB, productID uint, delta int) error
	DeleteByID(ctx context.Context, tx *gorm.DB, productID uint) error
}

type ListOrdersInput struct {
	UserID uint
	Status string
	Offset int
	Limit  int
}

type OrderRepository interface {
	Count(ctx context.Context, tx *gorm.DB, in ListOrdersInput) (int64, error)
	List(ctx context.Context, tx *gorm.DB, in ListOrdersInput) ([]models.Order, error)
	Create(ctx context.Context, tx *gorm.DB, order *models.Order) error
	GetByOrderNo(ctx context.Context, tx *gorm.DB, orderNo string) (models.Order, error)
	GetByOrderNoAndUser(ctx context.Context, tx *gorm.DB, orderNo string, userID uint) (models.Order, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderNo string, status string) error
}

type MediaTaskRepository interface {
	Create(ctx context.Context, tx *gorm.DB, task *models.MediaTask) error
	GetByTaskID(ctx context.Context, tx *gorm.DB, taskID string) (models.MediaTask, error)
	GetByUploadID(ctx context.Context, tx *gorm.DB, uploadID string) (models.MediaTask, error)
	UpdateByTaskID(ctx context.Context, tx *gorm.DB, taskID string, updates map[string]interface{}) error
	ListCompletedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) ([]models.MediaTask, error)
	DeleteByID(ctx context.Context, tx *gorm.DB, id uint) error
}

type Container struct {
	TxManager  TxManager
	Users      UserRepository
	Categories CategoryRepository
	Products   ProductRepository
	Orders     OrderRepository
	MediaTasks MediaTaskRepository
}
