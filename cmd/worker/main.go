package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"promocart/internal/config"
	"promocart/internal/database"
	"promocart/internal/logger"
	"promocart/internal/services/reconcile"
	"promocart/internal/services/storefront"
	"promocart/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)
	defer logger.Sync()

	db, err := database.New(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	client := storefront.NewClient(cfg, logger)
	publisher := worker.NewResultPublisher(cfg, logger)
	defer publisher.Close()

	service := reconcile.NewService(reconcile.NewGormStore(db.DB), client, client, logger).
		WithPublisher(publisher)

	// Initialize worker
	w := worker.New(cfg, logger, service)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Start worker
	logger.Info("Starting worker...")
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	w.Stop()
	<-done
}
