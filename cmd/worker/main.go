package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"backendconf/internal/config"
	"backendconf/internal/database"
	"backendconf/internal/database/migration"
	"backendconf/internal/repository/postgres"
	"backendconf/internal/sdk"
	"backendconf/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	loc := time.UTC

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	docRepo := postgres.NewDocumentPostgres(db)
	propRepo := postgres.NewPropertyPostgres(db)
	sdkClient := sdk.NewHTTPClient(sdk.HTTPClientOptions{
		BaseURL: cfg.SDK.BaseURL,
		Token:   cfg.SDK.Token,
	})

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, asynq.Config{
		Concurrency: cfg.Redis.Concurrency,
	})

	mux := asynq.NewServeMux()
	processor := worker.NewProcessor(docRepo, propRepo, sdkClient)
	processor.Register(mux)

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Run(mux); err != nil {
		log.Printf("worker stopped: %v", err)
		os.Exit(1)
	}
}
