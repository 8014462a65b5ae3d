package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"backendconf/internal/config"
	"backendconf/internal/convert"
	"backendconf/internal/database"
	"backendconf/internal/database/migration"
	handlers "backendconf/internal/http/handler"
	"backendconf/internal/http/middleware"
	"backendconf/internal/otel"
	"backendconf/internal/queue"
	"backendconf/internal/repository/postgres"
	"backendconf/internal/sdk"
	"backendconf/internal/service"
	"backendconf/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.UTC

	ctx := context.Background()

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("failed to shut down tracing: %v", err)
		}
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Task queue client for document:updated events
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()
	events := queue.NewAsynqPublisher(asynqClient)

	// Outbound clients: case/folder hierarchy service and PDF converter
	sdkClient := sdk.NewHTTPClient(sdk.HTTPClientOptions{
		BaseURL: cfg.SDK.BaseURL,
		Token:   cfg.SDK.Token,
	})
	converter := convert.NewHTTPConverter(convert.HTTPConverterOptions{
		BaseURL: cfg.Converter.BaseURL,
	})

	// Initialize repositories and services
	docRepo := postgres.NewDocumentPostgres(db)
	folderRepo := postgres.NewFolderPostgres(db)
	propRepo := postgres.NewPropertyPostgres(db)
	docSvc := service.NewDocumentService(docRepo, propRepo, objStore, converter, sdkClient, events)
	folderSvc := service.NewFolderService(folderRepo, propRepo, sdkClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register prometheus metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, docSvc, folderSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
