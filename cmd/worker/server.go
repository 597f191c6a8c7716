package main

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"
	zlog "github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/shared"
)

const shutdownTimeout = 30 * time.Second

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

func setupAsynqServer(cfg *Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		cfg.Redis,
		asynq.Config{
			Queues: map[string]int{
				shared.QueueDefault:     6,
				shared.QueueMaintenance: 2,
			},
			Concurrency:     cfg.Job.Concurrency,
			ShutdownTimeout: shutdownTimeout,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				zlog.Error().
					Err(err).
					Str("type", task.Type()).
					Int("retried", retried).
					Int("max_retry", maxRetry).
					Msg("[Asynq] ❌ Task failed")
			}),
		},
	)

	log.Println("[Worker] Starting...")
	if err := srv.Start(mux); err != nil {
		log.Fatalf("[Worker] Failed: %v", err)
	}

	return &asynqServer{Server: srv}
}

// Shutdown stops pulling new tasks and waits up to shutdownTimeout for
// in-flight ones.
func (s *asynqServer) Shutdown() {
	log.Printf("[Worker] Shutting down (waiting max %s)...", shutdownTimeout)
	start := time.Now()
	s.Server.Shutdown()
	if time.Since(start) >= shutdownTimeout {
		log.Println("[Worker] ⚠️ Shutdown timeout exceeded")
		return
	}
	log.Println("[Worker] ✓ Gracefully stopped")
}
