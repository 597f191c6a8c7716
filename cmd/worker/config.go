package main

import (
	"log"

	"github.com/hibiken/asynq"

	"tovakustatus-backend/internal/config"
	"tovakustatus-backend/pkg/container"
)

// Config is the slice of application config the worker needs.
type Config struct {
	Redis asynq.RedisClientOpt
	Job   config.WorkerConfig
	MinIO config.MinIOConfig
}

func loadConfig(c *container.Container) *Config {
	cfg := &Config{
		Redis: c.RedisConnOpt(),
		Job:   c.Config.Worker,
		MinIO: c.Config.MinIO,
	}

	log.Printf("[Config] Redis: %s, MinIO: %s/%s, concurrency: %d",
		cfg.Redis.Addr, cfg.MinIO.Endpoint, cfg.MinIO.Bucket, cfg.Job.Concurrency)

	return cfg
}
