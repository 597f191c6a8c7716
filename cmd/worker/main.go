package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tovakustatus-backend/internal/infrastructure/storage"
	"tovakustatus-backend/pkg/container"
	"tovakustatus-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("[Container] Failed to initialize: %v", err)
	}
	defer c.Cleanup()

	logger.Init(c.Config.App.Environment, c.Config.App.LogLevel)

	cfg := loadConfig(c)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	cancel()
	if err != nil {
		log.Fatalf("[Storage] Failed to initialize MinIO: %v", err)
	}

	handlers := initializeHandlers(c, objects)

	if err := startServices(cfg, c, objects); err != nil {
		log.Fatalf("[Startup] Health check failed: %v", err)
	}

	srv := setupAsynqServer(cfg, handlers)
	scheduler := setupScheduler(cfg)

	waitForShutdown(srv, scheduler)
}

func waitForShutdown(srv *asynqServer, scheduler *asynqScheduler) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("[Shutdown] Gracefully stopping...")
	scheduler.Shutdown()
	srv.Shutdown()
	log.Println("[Shutdown] ✓ Stopped")
}
