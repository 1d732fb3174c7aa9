package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"cargoconnect/internal/compliance"
	"cargoconnect/internal/config"
	"cargoconnect/internal/customs"
	"cargoconnect/internal/database"
	"cargoconnect/internal/database/migration"
	"cargoconnect/internal/event"
	handlers "cargoconnect/internal/http/handler"
	"cargoconnect/internal/http/middleware"
	"cargoconnect/internal/lifecycle"
	"cargoconnect/internal/metrics"
	"cargoconnect/internal/model"
	"cargoconnect/internal/otel"
	"cargoconnect/internal/registry"
	"cargoconnect/internal/repository/postgres"
	"cargoconnect/internal/service"
	"cargoconnect/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Jurisdiction profiles: built-in seed, optionally extended from file.
	// Loaded once; read-only afterwards.
	reg, err := registry.Load(cfg.Compliance.JurisdictionsPath)
	if err != nil {
		log.Fatalf("failed to load jurisdiction profiles: %v", err)
	}

	defaultPolicy, err := model.ParseCompliancePolicy(cfg.Compliance.DefaultPolicy)
	if err != nil {
		log.Fatalf("invalid compliance policy config: %v", err)
	}

	// Engine wiring: repository, lifecycle machine, evaluator, form generator
	sink := event.NewLogSink()
	domainMetrics := metrics.New(prometheus.DefaultRegisterer)
	docRepo := postgres.NewDocumentPostgres(db)
	machine := lifecycle.New(cfg.Compliance.AllowResubmitVerified)
	evaluator := compliance.NewEvaluator(reg, docRepo, sink, defaultPolicy)
	formGen := customs.NewGenerator(reg, cfg.Compliance.FormsBaseURL)

	docSvc := service.NewDocumentService(docRepo, objStore, machine, sink, domainMetrics)
	compSvc := service.NewComplianceService(evaluator, formGen, domainMetrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    (cfg.MaxUploadMB + 1) * 1024 * 1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	promMW, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register http metrics: %v", err)
	}
	app.Use(promMW.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, reg, docSvc, compSvc, int64(cfg.MaxUploadMB)*1024*1024)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
