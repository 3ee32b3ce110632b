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

	"go.uber.org/zap"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgvalidator "github.com/physiohub/clinic-assistant/pkg/validator"

	"github.com/physiohub/clinic-assistant/internal/adapter/clinical"
	"github.com/physiohub/clinic-assistant/internal/adapter/handler"
	"github.com/physiohub/clinic-assistant/internal/adapter/repository"
	"github.com/physiohub/clinic-assistant/internal/audio"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/cache"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/database"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/storage"
	"github.com/physiohub/clinic-assistant/internal/usecase/consultation"
	"github.com/physiohub/clinic-assistant/internal/usecase/identity"
	pkgai "github.com/physiohub/clinic-assistant/pkg/ai"
	"github.com/physiohub/clinic-assistant/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Echo instance
	e := echo.New()

	// Register validator for request validation
	e.Validator = pkgvalidator.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = false

	// Custom logger format
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human}\n",
	}))

	// Recover from panics
	e.Use(middleware.Recover())

	// CORS middleware
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Doctor-ID", "X-Request-ID"},
		AllowCredentials: true,
	}))

	// Initialize dependencies
	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Run migrations only when explicitly enabled in config.
	// Production deployments should manage schema via sql-migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE or manage schema with sql-migrate.")
		}
		log.Println("🔄 Applying migrations (development only) ...")
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		log.Println("🔄 Skipping migrations; use sql-migrate for schema migrations in CI/CD/production")
	}

	// Initialize cache store
	var store cache.Store
	if cfg.Redis.Enabled {
		log.Println("📦 Connecting to Redis...")
		redisStore, err := cache.NewRedisStore(&cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		log.Println("📦 Redis disabled, using in-memory cache")
		store = cache.NewMemoryStore()
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	patientRepo := repository.NewPatientRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	noteRepo := repository.NewClinicalNoteRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)

	// Initialize identity directories
	patientDirectory := identity.NewPatientDirectory(patientRepo, store, cfg.Redis.CacheTTL, logger)
	doctorDirectory := identity.NewDoctorDirectory(doctorRepo)

	// Initialize archive storage
	var archive consultation.ArchiveStore
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(&cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to connect to object storage: %v", err)
		}
		archive = minioClient
	} else {
		log.Println("🗄️  Object storage disabled, consultation artifacts will not be archived")
	}

	// Initialize transcription and extraction clients
	log.Println("🤖 Initializing AI components...")
	var transcriber consultation.Transcriber
	switch cfg.Transcriber.Provider {
	case "assemblyai":
		transcriber = pkgai.NewAssemblyAIClient(&cfg.Transcriber)
	default:
		transcriber = pkgai.NewWhisperClient(&cfg.Transcriber)
	}
	extractor := pkgai.NewExtractorClient(&cfg.Extractor)

	// Initialize consultation core
	log.Println("🩺 Initializing consultation pipeline...")
	recordsClient := clinical.NewClient(&cfg.Clinical)
	coordinator := consultation.NewCoordinator(recordsClient, logger)
	historyStore := consultation.NewHistoryStore(recordsClient, logger)
	formStore := consultation.NewFormStore(coordinator, logger)
	recorder := audio.NewRecorder(audio.NewCaptureSlot(), logger)

	consultationService := consultation.NewService(
		recorder,
		transcriber,
		extractor,
		consultation.NewParser(),
		coordinator,
		historyStore,
		formStore,
		patientDirectory,
		doctorDirectory,
		archive,
		logger,
	)

	// Initialize handlers
	log.Println("🚀 Initializing handlers...")
	recordsHandler := handler.NewRecords(patientRepo, noteRepo, assessmentRepo, patientDirectory, logger)
	consultationHandler := handler.NewConsultation(consultationService, logger)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(cfg, recordsHandler, consultationHandler)
	router.Setup(e)

	// Start server
	go func() {
		addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)

		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	// Discard any in-flight recording before stopping
	recorder.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
