package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promocart/internal/api"
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

	// Initialize database
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

	// Initialize API server
	server := api.New(cfg, logger, db, service)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
	}
}
