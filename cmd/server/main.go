package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"study-resource-hub/internal/config"
	"study-resource-hub/internal/db"
	"study-resource-hub/internal/middleware"
	"study-resource-hub/internal/resource"
	"study-resource-hub/internal/rollup"
	"study-resource-hub/internal/section"
	"study-resource-hub/internal/storage"
	"study-resource-hub/internal/user"
	"study-resource-hub/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Connect to database
	db.ConnectDb()
	defer db.CloseDb()

	// Migrate database schema
	db.Migrate()

	// Seed database with initial data (for development)
	db.SeedData()

	// Initialize Redis
	redis.InitRedis()
	cache := redis.NewCache()

	// Storage provider for Image/Pdf uploads
	uploader, err := storage.NewGCSUploader(
		context.Background(),
		config.AppConfig.StorageBucket,
		config.AppConfig.StorageCDNDomain,
	)
	if err != nil {
		log.Fatalf("error creating storage uploader: %v", err)
	}

	// Initialize repositories
	coordinator := rollup.NewCoordinator()
	userRepo := user.NewRepository(db.AppDb)
	sectionRepo := section.NewRepository(db.AppDb)
	resourceRepo := resource.NewRepository(db.AppDb, coordinator)

	// Initialize services
	userService := user.NewService(userRepo)
	sectionService := section.NewService(sectionRepo, uploader, cache)
	resourceService := resource.NewService(resourceRepo, uploader, cache)

	// Initialize handlers
	userHandler := user.NewHandler(userService)
	sectionHandler := section.NewHandler(sectionService)
	resourceHandler := resource.NewHandler(resourceService)

	authMiddleware := &middleware.Auth{UserService: userService}

	// Initialize Gin router
	router := gin.Default()
	router.Use(middleware.ErrorHandler())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}

	if config.AppConfig.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Welcome to Study Resource Hub"})
	})

	api := router.Group("/api/v1")

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", userHandler.Register)
	authRoutes.POST("/login", userHandler.Login)
	authRoutes.POST("/refresh", userHandler.RefreshToken)
	authRoutes.POST("/logout", authMiddleware.AuthMiddleWare(), userHandler.Logout)

	// User routes
	userRoutes := api.Group("/users", authMiddleware.AuthMiddleWare())
	userRoutes.GET("/me", userHandler.GetProfile)
	userRoutes.PUT("/update", userHandler.UpdateProfile)

	// Section routes
	sectionRoutes := api.Group("/sections", authMiddleware.AuthMiddleWare())
	sectionRoutes.POST("", sectionHandler.Create)
	sectionRoutes.GET("", sectionHandler.List)
	sectionRoutes.GET("/:id", sectionHandler.Show)
	sectionRoutes.DELETE("/:id", sectionHandler.Delete)

	// Resource routes
	resourceRoutes := api.Group("/resources", authMiddleware.AuthMiddleWare())
	resourceRoutes.POST("", resourceHandler.Create)
	resourceRoutes.GET("", resourceHandler.List)
	resourceRoutes.GET("/:id", resourceHandler.Show)
	resourceRoutes.PUT("/:id", resourceHandler.Update)
	resourceRoutes.DELETE("/:id", resourceHandler.Delete)

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	// Start server
	go func() {
		log.Printf("Server listening on port %s", serverPort)
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Println("Server shutdown error:", err)
	}

	<-ctx.Done()
	log.Println("Server shutdown complete")
}
