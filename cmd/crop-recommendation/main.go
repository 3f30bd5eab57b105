package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	httpapi "github.com/i474232898/crop-recommendation/internal/api/http"
	"github.com/i474232898/crop-recommendation/internal/app"
	"github.com/i474232898/crop-recommendation/internal/config"
	"github.com/i474232898/crop-recommendation/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	application, err := app.New(startCtx, cfg)
	cancelStart()
	if err != nil {
		log.Fatalf("failed to start: %v", err)
	}
	defer application.Close()

	// Optional periodic catalog reload.
	sched := scheduler.New(cfg.CatalogReloadInterval, application.Catalogs)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	fiberApp := httpapi.NewApp(cfg.CORSAllowOrigins)

	// API routes.
	httpapi.RegisterRoutes(fiberApp, application.Pipeline, application.Catalogs)

	go func() {
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()
	log.Printf("INFO: crop-recommendation listening on :%s", cfg.Port)

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

