package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"tovakustatus-backend/internal/config"
	"tovakustatus-backend/internal/shared"
	"tovakustatus-backend/pkg/logger"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.WorkerConfig
}

func NewScheduler(redis asynq.RedisConnOpt, jobConfig config.WorkerConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		redis,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterJobs() error {
	if err := s.registerGenerateSitemapJob(); err != nil {
		return err
	}

	if err := s.registerSnapshotContentJob(); err != nil {
		return err
	}

	return nil
}

// ================================================
// JOB 1: Generate sitemap (hourly by default)
// ================================================
func (s *Scheduler) registerGenerateSitemapJob() error {
	payload, err := json.Marshal(shared.GenerateSitemapPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeGenerateSitemap, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.SitemapCron,
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
		asynq.Unique(time.Hour),
	)
	if err != nil {
		logger.Error("Failed to register GenerateSitemap job", err)
		return err
	}

	logger.Info("✓ Registered GenerateSitemap", map[string]interface{}{"cron": s.jobConfig.SitemapCron})
	return nil
}

// ================================================
// JOB 2: Snapshot content collections (daily by default)
// ================================================
func (s *Scheduler) registerSnapshotContentJob() error {
	payload, err := json.Marshal(shared.SnapshotContentPayload{Keep: s.jobConfig.SnapshotKeep})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSnapshotContent, payload)

	_, err = s.scheduler.Register(
		s.jobConfig.SnapshotCron,
		task,
		asynq.Queue(shared.QueueMaintenance),
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SnapshotContent job", err)
		return err
	}

	logger.Info("✓ Registered SnapshotContent", map[string]interface{}{
		"cron": s.jobConfig.SnapshotCron,
		"keep": s.jobConfig.SnapshotKeep,
	})
	return nil
}

// Start runs the scheduler in the background; signals are handled by the caller.
func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
