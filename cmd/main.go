package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"delivery-service/internal/clients"
	"delivery-service/internal/config"
	"delivery-service/internal/database"
	"delivery-service/internal/events"
	"delivery-service/internal/handlers"
	"delivery-service/internal/middleware"
	"delivery-service/internal/repository"
	"delivery-service/internal/services"
	"gorm.io/gorm"

	"github.com/Tesseract-Nexus/go-shared/rbac"
	"github.com/Tesseract-Nexus/go-shared/secrets"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Connect to database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✓ Connected to database")

	// Run automated database migrations
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis client
	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
		redisClient = nil
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Structured logger for services and events
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	// Initialize NATS events publisher (non-blocking)
	go func() {
		if err := events.InitPublisher(logger); err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (events won't be published)", err)
		} else {
			log.Println("✓ NATS events publisher initialized")
		}
	}()

	// Initialize repository
	configRepo := repository.NewConfigRepository(db, redisClient)

	// Subscribe to tenant.created for default config provisioning (non-fatal)
	if subscriber, err := events.NewSubscriber(configRepo, logger); err != nil {
		log.Printf("WARNING: Failed to initialize events subscriber: %v (tenant provisioning disabled)", err)
	} else if err := subscriber.Start(); err != nil {
		log.Printf("WARNING: Failed to start events subscriber: %v", err)
	} else {
		log.Println("✓ NATS events subscriber started")
	}

	// Initialize clients
	productsClient := clients.NewProductsClient(redisClient, logger)

	// Initialize services
	estimateService := services.NewEstimateService(configRepo, productsClient, logger)
	configService := services.NewConfigService(configRepo, logger)

	// Initialize handlers
	deliveryHandler := handlers.NewDeliveryHandler(estimateService)
	configHandler := handlers.NewConfigHandler(configService)

	// Initialize RBAC middleware
	staffServiceURL := os.Getenv("STAFF_SERVICE_URL")
	if staffServiceURL == "" {
		staffServiceURL = "http://staff-service:8080"
	}
	rbacMiddleware := rbac.NewMiddlewareWithURL(staffServiceURL, nil)
	log.Println("✓ RBAC middleware initialized")

	// Setup router
	router := setupRouter(deliveryHandler, configHandler, db, rbacMiddleware)

	// Start server
	log.Printf("Delivery Service starting on port %s (env: %s)", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures the HTTP router
func setupRouter(deliveryHandler *handlers.DeliveryHandler, configHandler *handlers.ConfigHandler, db *gorm.DB, rbacMiddleware *rbac.Middleware) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.TenantMiddleware())
	router.Use(middleware.LoggingMiddleware())

	// Health checks
	router.GET("/health", deliveryHandler.HealthCheck)

	// Liveness probe - simple check that the service is running
	router.GET("/livez", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness probe - check that DB is accessible
	router.GET("/readyz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil {
			c.JSON(503, gin.H{"status": "error", "message": "database not available"})
			return
		}
		if err := sqlDB.Ping(); err != nil {
			c.JSON(503, gin.H{"status": "error", "message": "database ping failed"})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		// Storefront estimation endpoints. No RBAC: these are called by the
		// shop widget with only a tenant header.
		delivery := v1.Group("/delivery")
		{
			delivery.POST("/estimate", deliveryHandler.Estimate)
			delivery.POST("/countdown", deliveryHandler.Countdown)
			delivery.GET("/holidays/:country/:year", deliveryHandler.GetHolidays)

			// Preview is an editor tool, not a storefront surface
			delivery.POST("/preview", rbacMiddleware.RequirePermission(rbac.PermissionShippingRead), deliveryHandler.Preview)
		}

		// Config document with RBAC
		v1.GET("/config", rbacMiddleware.RequirePermission(rbac.PermissionShippingRead), configHandler.GetConfig)

		// Profile and rule CRUD with RBAC
		profiles := v1.Group("/profiles")
		{
			profiles.POST("", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.CreateProfile)
			profiles.PUT("/:id", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.UpdateProfile)
			profiles.DELETE("/:id", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.DeleteProfile)
			profiles.POST("/:id/activate", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.ActivateProfile)

			profiles.POST("/:id/rules", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.CreateRule)
			profiles.PUT("/:id/rules/order", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.ReorderRules)
			profiles.POST("/:id/rules/undo", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.UndoDeleteRule)
			profiles.PUT("/:id/rules/:ruleId", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.UpdateRule)
			profiles.DELETE("/:id/rules/:ruleId", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.DeleteRule)
		}

		// Global settings with RBAC
		settings := v1.Group("/settings")
		{
			settings.GET("", rbacMiddleware.RequirePermission(rbac.PermissionShippingRead), configHandler.GetSettings)
			settings.PUT("", rbacMiddleware.RequirePermission(rbac.PermissionShippingManage), configHandler.UpdateSettings)
		}
	}

	return router
}
