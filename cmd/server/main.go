package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/kwatanabe/portfolio-api/internal/config"
	"github.com/kwatanabe/portfolio-api/internal/database"
	"github.com/kwatanabe/portfolio-api/internal/handlers"
	"github.com/kwatanabe/portfolio-api/internal/services"
)

func main() {
	// Load .env if present, then configuration
	_ = godotenv.Load()
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run schema migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Run one-shot data migrations. These must complete before any request
	// is served; a failure leaves no marker and aborts startup.
	if err := database.RunDataMigrations(database.GetDB()); err != nil {
		log.Fatalf("Failed to run data migrations: %v", err)
	}

	// Initialize services and handlers
	personService := services.NewPersonService(database.GetDB())
	projectService := services.NewProjectService(database.GetDB())

	personHandler := handlers.NewPersonHandler(personService)
	projectHandler := handlers.NewProjectHandler(projectService)
	portfolioHandler := handlers.NewPortfolioHandler(projectService)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Portfolio API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PUT("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		people := api.Group("/people")
		{
			people.GET("", personHandler.ListPeople)
			people.POST("", personHandler.CreatePerson)
			people.GET("/:id", personHandler.GetPerson)
			people.PUT("/:id", personHandler.UpdatePerson)
			people.DELETE("/:id", personHandler.DeletePerson)
		}

		api.GET("/export", portfolioHandler.Export)
		api.POST("/import", portfolioHandler.Import)
	}

	// Start server
	log.Printf("Server starting on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
