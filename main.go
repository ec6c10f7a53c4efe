package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"artsstore/assetstore"
	"artsstore/chunkstore"
	"artsstore/config"
	"artsstore/database"
	"artsstore/handlers"
	"artsstore/logger"
	"artsstore/middleware"
	"artsstore/models"
	"artsstore/queue"
	"artsstore/repositories"
	"artsstore/services"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("starting artsstore service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	database.DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.MediaTask{},
	)
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	if err := os.MkdirAll(cfg.Media.TempPath, 0o755); err != nil {
		log.Fatalf("create temp dir failed: %v", err)
	}

	assets, err := assetstore.NewMinioStore(&cfg.Assets)
	if err != nil {
		log.Fatalf("init asset store failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB).BuildContainer()

	processors := map[string]queue.Processor{
		models.TaskKindImageOptimize: services.NewImageOptimizeProcessor(assets, &cfg.Media),
		models.TaskKindModelIngest:   services.NewModelIngestProcessor(assets),
	}

	broker := queue.NewRedisBroker(database.RedisClient)
	taskQueue := queue.NewBrokerQueue(broker, repoContainer.MediaTasks, cfg.Media.TempPath, cfg.Queue.MaxRetries)
	inline := queue.NewInline(processors)

	workers := queue.NewWorkerPool(broker, repoContainer.MediaTasks, processors, queue.WorkerOptions{
		ImageWorkers: cfg.Queue.ImageWorkers,
		ModelWorkers: cfg.Queue.ModelWorkers,
		BackoffBase:  time.Duration(cfg.Queue.BackoffBaseMs) * time.Millisecond,
	})
	workers.Start()

	chunks := chunkstore.New(time.Duration(cfg.Queue.SessionTTL) * time.Second)

	serviceContainer := services.NewContainer(repoContainer, chunks, taskQueue, inline)
	handlers.SetServices(serviceContainer)

	serviceContainer.Cleanup.Start()
	log.Println("maintenance workers started")

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	setupRoutes(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func setupRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", handlers.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	api.GET("/categories", handlers.ListCategories)
	api.GET("/products", handlers.ListProducts)
	api.GET("/products/:id", handlers.GetProduct)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", handlers.GetProfile)

		protected.POST("/orders", handlers.CreateOrder)
		protected.GET("/orders", handlers.ListOrders)
		protected.GET("/orders/:order_no", handlers.GetOrder)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	{
		admin.POST("/categories", handlers.CreateCategory)
		admin.PUT("/categories/:id", handlers.UpdateCategory)
		admin.DELETE("/categories/:id", handlers.DeleteCategory)

		admin.POST("/products", handlers.CreateProduct)
		admin.PUT("/products/:id", handlers.UpdateProduct)
		admin.DELETE("/products/:id", handlers.DeleteProduct)

		admin.GET("/orders", handlers.AdminListOrders)
		admin.PUT("/orders/:order_no/status", handlers.UpdateOrderStatus)

		admin.POST("/media/upload", handlers.DirectUpload)
		admin.POST("/media/upload/chunk", handlers.UploadChunk)
		admin.GET("/media/progress/:upload_id", handlers.UploadProgress)
	}
}
