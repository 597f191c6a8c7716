package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"

	"tovakustatus-backend/pkg/container"
	"tovakustatus-backend/pkg/kv"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker runs the startup checks and backs the /ready probe.
type HealthChecker struct {
	redisClient *redis.Client
	objects     pinger
	backend     kv.Store
}

func startServices(cfg *Config, c *container.Container, objects pinger) error {
	log.Println("============================================")
	log.Println("🚀 Tova ku Status Worker Starting...")
	log.Println("============================================")

	checker := &HealthChecker{
		redisClient: redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			MaintNotificationsConfig: &maintnotifications.Config{
				Mode: maintnotifications.ModeDisabled,
			},
		}),
		objects: objects,
		backend: c.Backend,
	}

	if err := checker.checkAll(context.Background()); err != nil {
		log.Printf("❌ Health check failed: %v\n", err)
		return err
	}

	go checker.serve(cfg.Job.HealthListenAddr)

	return nil
}

func (h *HealthChecker) checks() []struct {
	name string
	fn   func(context.Context) error
} {
	return []struct {
		name string
		fn   func(context.Context) error
	}{
		{"Redis Connection", func(ctx context.Context) error { return h.redisClient.Ping(ctx).Err() }},
		{"Content Store", h.backend.Ping},
		{"Object Storage", h.objects.Ping},
	}
}

func (h *HealthChecker) checkAll(ctx context.Context) error {
	for _, check := range h.checks() {
		log.Printf("⏳ Checking %s...\n", check.name)
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check.fn(checkCtx)
		cancel()
		if err != nil {
			log.Printf("❌ %s: %v\n", check.name, err)
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		log.Printf("✓ %s: OK\n", check.name)
	}
	return nil
}

// serve exposes /health (liveness) and /ready (dependencies reachable).
func (h *HealthChecker) serve(addr string) {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "tovakustatus-worker"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := h.checkAll(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	log.Printf("[Health] Starting health check server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Printf("[Health] Failed to start: %v\n", err)
	}
}
