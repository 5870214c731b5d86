package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/household-apps/todo-service/internal/cache"
	"github.com/household-apps/todo-service/internal/config"
	"github.com/household-apps/todo-service/internal/database"
	"github.com/household-apps/todo-service/internal/handlers"
	"github.com/household-apps/todo-service/internal/middleware"
	"github.com/household-apps/todo-service/internal/repository"
	"github.com/household-apps/todo-service/internal/services"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize result cache
	var store cache.Store
	if cfg.CacheEnabled {
		store = cache.NewMemory(cfg.CacheTTL)
	} else {
		store = cache.Noop{}
	}

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(database.GetDB())
	categoryRepo := repository.NewCategoryRepository(database.GetDB())
	householdRepo := repository.NewHouseholdRepository(database.GetDB())

	// Initialize AI service
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Initialize services
	taskService := services.NewTaskService(taskRepo, categoryRepo, store, aiService)
	categoryService := services.NewCategoryService(categoryRepo, taskRepo, store)

	// Start the reminder scheduler
	reminderService, err := services.NewReminderService(cfg, householdRepo, taskRepo)
	if err != nil {
		log.Fatalf("Failed to initialize reminder service: %v", err)
	}
	if err := reminderService.Start(); err != nil {
		log.Fatalf("Failed to start reminder service: %v", err)
	}

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	// Initialize Gin router
	r := gin.Default()

	// API routes
	api := r.Group("/api/v1")
	{
		// System endpoints
		system := api.Group("/system")
		{
			system.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":    "healthy",
					"timestamp": time.Now(),
					"version":   version,
				})
			})
			system.GET("/version", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"service":     "todo-service",
					"version":     version,
					"environment": cfg.GinMode,
				})
			})
		}

		// Task routes (household scoped)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireHouseholdContext())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/search", taskHandler.SearchTasks)
			tasks.GET("/overdue", taskHandler.ListOverdueTasks)
			tasks.GET("/statistics", taskHandler.GetTaskStatistics)
			tasks.GET("/assigned/:userId", taskHandler.ListTasksByUser)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
			tasks.PATCH("/:id/assign", taskHandler.AssignTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Category routes (household scoped)
		categories := api.Group("/categories")
		categories.Use(middleware.RequireHouseholdContext())
		{
			categories.GET("", categoryHandler.ListCategories)
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("/with-task-counts", categoryHandler.ListCategoriesWithTaskCounts)
			categories.GET("/count", categoryHandler.GetCategoryCount)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.ServerPort)
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
