package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"okrhub/internal/caching"
	"okrhub/internal/handlers"
	"okrhub/internal/importer"
	"okrhub/internal/jobs/background"
	"okrhub/internal/middleware"
	"okrhub/internal/repositories"
	"okrhub/internal/services"
	"okrhub/pkg/database"
)

const version = "1.0.0"

// CustomValidator adapts go-playground/validator to echo's Validate hook
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

func main() {
	// Database connection
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: Using generated JWT secret")
	}

	// Redis configuration
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	// MinIO configuration
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin" // Default for development
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin" // Default for development
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	importBucket := os.Getenv("IMPORT_BUCKET")
	if importBucket == "" {
		importBucket = "okr-imports"
	}

	storageSvc, err := services.NewStorageService(minioEndpoint, minioAccessKey, minioSecretKey, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize storage service: %v", err)
	}

	// Create repositories
	tenantRepo := repositories.NewTenantRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	areaRepo := repositories.NewAreaRepo(pool)
	objectiveRepo := repositories.NewObjectiveRepo(pool)
	initiativeRepo := repositories.NewInitiativeRepo(pool)
	activityRepo := repositories.NewActivityRepo(pool)
	importJobRepo := repositories.NewImportJobRepo(pool)
	importItemRepo := repositories.NewImportJobItemRepo(pool)

	// Create cache service
	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Import pipeline
	matcher := importer.NewMatcher(areaRepo, objectiveRepo, initiativeRepo, activityRepo)
	rowProcessor := importer.NewRowProcessor(matcher, areaRepo, objectiveRepo, initiativeRepo, activityRepo, userRepo)
	runner := importer.NewRunner(rowProcessor, importJobRepo, importItemRepo, storageSvc, cacheSvc, importBucket)
	tracker := importer.NewTracker(importJobRepo, importItemRepo, cacheSvc)

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr, Password: redisPassword, DB: redisDB}
	queueClient := asynq.NewClient(redisOpt)
	defer queueClient.Close()

	dispatcher := importer.NewDispatcher(importJobRepo, runner, storageSvc, cacheSvc, queueClient, importBucket)

	// Worker for queued imports
	queueServer := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"imports": 5},
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(importer.TypeImportProcess, importer.NewTaskHandler(runner).HandleImportTask)
	go func() {
		if err := queueServer.Run(mux); err != nil {
			log.Fatalf("Failed to run import worker: %v", err)
		}
	}()
	defer queueServer.Shutdown()

	// Background maintenance jobs
	scheduler := background.NewJobScheduler(importJobRepo)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("Failed to stop scheduler: %v", err)
		}
	}()

	// Create services
	tenantSvc := services.NewTenantService(tenantRepo)
	areaSvc := services.NewAreaService(areaRepo, initiativeRepo)
	objectiveSvc := services.NewObjectiveService(objectiveRepo, areaRepo, initiativeRepo)
	initiativeSvc := services.NewInitiativeService(initiativeRepo, objectiveRepo, activityRepo)
	activitySvc := services.NewActivityService(activityRepo, initiativeRepo, userRepo)
	dashboardSvc := services.NewDashboardService(initiativeRepo, areaSvc, cacheSvc)

	// Create handlers
	tenantHandlers := handlers.NewTenantHandlers(tenantSvc)
	areaHandlers := handlers.NewAreaHandlers(areaSvc)
	objectiveHandlers := handlers.NewObjectiveHandlers(objectiveSvc)
	initiativeHandlers := handlers.NewInitiativeHandlers(initiativeSvc)
	activityHandlers := handlers.NewActivityHandlers(activitySvc)
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc)
	importHandlers := handlers.NewImportHandlers(dispatcher, tracker)
	healthHandlers := handlers.NewHealthHandlers(pool, cacheSvc, storageSvc, importBucket)

	// Create Echo instance
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	// API routes
	v1 := e.Group("/v1")

	// Protected routes (require JWT)
	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))

	// Tenant routes
	tenantAdmin := middleware.RequireTenantAdmin()
	protected.POST("/tenants", tenantHandlers.CreateTenant, tenantAdmin)
	protected.GET("/tenants/:id", tenantHandlers.GetTenant)
	protected.PUT("/tenants/:id", tenantHandlers.UpdateTenant, tenantAdmin)

	// Area routes
	protected.GET("/areas", areaHandlers.ListAreas)
	protected.POST("/areas", areaHandlers.CreateArea)
	protected.GET("/areas/:id", areaHandlers.GetArea)
	protected.PUT("/areas/:id", areaHandlers.UpdateArea, middleware.RequireAreaManagement(handlers.ResolveAreaID))
	protected.DELETE("/areas/:id", areaHandlers.DeleteArea)
	protected.GET("/areas/:id/kpis", areaHandlers.GetAreaKPIs)

	// Objective routes
	protected.GET("/objectives", objectiveHandlers.ListObjectives)
	protected.POST("/objectives", objectiveHandlers.CreateObjective)
	protected.GET("/objectives/:id", objectiveHandlers.GetObjective)
	protected.PUT("/objectives/:id", objectiveHandlers.UpdateObjective)
	protected.DELETE("/objectives/:id", objectiveHandlers.DeleteObjective)
	protected.GET("/objectives/:id/initiatives", objectiveHandlers.ListObjectiveInitiatives)

	// Initiative routes
	protected.GET("/initiatives", initiativeHandlers.ListInitiatives)
	protected.POST("/initiatives", initiativeHandlers.CreateInitiative)
	protected.GET("/initiatives/:id", initiativeHandlers.GetInitiative)
	protected.PUT("/initiatives/:id", initiativeHandlers.UpdateInitiative)
	protected.DELETE("/initiatives/:id", initiativeHandlers.DeleteInitiative)
	protected.GET("/initiatives/:id/activities", initiativeHandlers.ListInitiativeActivities)

	// Activity routes
	protected.POST("/activities", activityHandlers.CreateActivity)
	protected.GET("/activities/:id", activityHandlers.GetActivity)
	protected.PUT("/activities/:id", activityHandlers.UpdateActivity)
	protected.DELETE("/activities/:id", activityHandlers.DeleteActivity)

	// Dashboard routes
	protected.GET("/dashboard/summary", dashboardHandlers.GetSummary)

	// Bulk upload routes
	upload := protected.Group("/upload", middleware.RequireImportCapability())
	upload.POST("/signed-url", importHandlers.RequestSignedURL)
	upload.POST("/notify", importHandlers.NotifyUpload)
	upload.GET("/jobs/:id", importHandlers.GetJob)
	upload.GET("/jobs/:id/items", importHandlers.ListJobItems)
	upload.GET("/history", importHandlers.ListJobs)
	upload.GET("/stats", importHandlers.GetStats)

	// Start server
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("okrhub server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
