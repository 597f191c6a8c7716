package main

import (
	"log"

	"tovakustatus-backend/internal/infrastructure/queue"
)

// asynqScheduler wraps queue.Scheduler with start/stop logging
type asynqScheduler struct {
	*queue.Scheduler
}

func setupScheduler(cfg *Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.Redis, cfg.Job)

	if err := scheduler.RegisterJobs(); err != nil {
		log.Fatalf("[Scheduler] Failed to register: %v", err)
	}

	log.Println("[Scheduler] Starting...")
	if err := scheduler.Start(); err != nil {
		log.Fatalf("[Scheduler] Failed: %v", err)
	}

	return &asynqScheduler{Scheduler: scheduler}
}

func (s *asynqScheduler) Shutdown() {
	log.Println("[Scheduler] Shutting down...")
	s.Scheduler.Shutdown()
	log.Println("[Scheduler] ✓ Stopped")
}
