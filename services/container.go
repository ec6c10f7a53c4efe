package services

import (
	"artsstore/chunkstore"
	"artsstore/config"
	"artsstore/queue"
	"artsstore/repositories"
)

type Container struct {
	Auth     AuthService
	Category CategoryService
	Product  ProductService
	Order    OrderService
	Upload   UploadService
	Progress ProgressService
	Cleanup  CleanupService
}

func NewContainer(repos repositories.Container, chunks *chunkstore.MemoryStore, q queue.Queue, inline InlineRunner) *Container {
	return &Container{
		Auth:     NewAuthService(repos.Users),
		Category: NewCategoryService(repos.Categories),
		Product:  NewProductService(repos.Products, repos.Categories),
		Order:    NewOrderService(repos.TxManager, repos.Orders, repos.Products),
		Upload:   NewUploadService(chunks, q, inline, &config.AppConfig.Media),
		Progress: NewProgressService(repos.MediaTasks),
		Cleanup:  NewCleanupService(repos.MediaTasks, chunks),
	}
}
