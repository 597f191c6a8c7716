// Command watcher is a headless client of the content API. It bootstraps an
// anonymous visitor identity and keeps badge counts for the configured list
// reads fresh through the polling query cache, persisting state to a local
// JSON file the way the browser keeps local storage.
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"tovakustatus-backend/internal/client/query"
	"tovakustatus-backend/internal/client/remote"
	"tovakustatus-backend/internal/client/visitor"
	"tovakustatus-backend/internal/config"
	"tovakustatus-backend/internal/infrastructure/filestore"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/pkg/logger"
	"tovakustatus-backend/pkg/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	logger.Init(cfg.App.Environment, cfg.App.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		zlog.Fatal().Err(err).Msg("watcher stopped")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// ========================================
	// 1. LOCAL STATE (visitor id, session, snapshots)
	// ========================================
	backend := filestore.New(cfg.Client.StateFile)
	defer backend.Close()
	store := localstore.New(backend)

	// ========================================
	// 2. REMOTE + QUERY CLIENTS
	// ========================================
	rc := remote.NewClient(cfg.Client.APIBaseURL, func() string {
		session, err := store.Session(context.Background())
		if err != nil || !session.IsAuthenticated {
			return ""
		}
		return session.Token
	})
	rc.MutationTimeout = cfg.Client.MutationTimeout

	cron := scheduler.NewCron()
	opts := query.Options{
		StaleTime:       cfg.Client.StaleTime,
		PollInterval:    cfg.Client.PollInterval,
		CacheTime:       cfg.Client.CacheTime,
		Retries:         cfg.Client.ReadRetries,
		MutationTimeout: cfg.Client.MutationTimeout,
		Scheduler:       cron,
	}
	if cfg.Client.ReadRetries == 0 {
		opts.Retries = -1
	}
	if cfg.Client.PersistSnapshots {
		opts.Snapshots = store
	}
	qc := query.NewClient(query.FromRemote(rc), opts)

	if err := qc.Start(ctx); err != nil {
		return err
	}
	cron.Start()
	defer func() {
		qc.Stop()
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cron.Stop(stopCtx)
	}()

	// ========================================
	// 3. BADGE WATCHER
	// ========================================
	keys := make([]query.Key, 0, len(cfg.Client.WatchKeys))
	for _, k := range cfg.Client.WatchKeys {
		keys = append(keys, query.ParseKey(k))
	}
	watcher := NewWatcher(qc, keys)
	watcher.Start(ctx)
	defer watcher.Stop()

	// ========================================
	// 4. VISITOR IDENTITY (blocks until shutdown)
	// ========================================
	boot := visitor.NewBootstrapper(store, rc)
	if cfg.Client.VisitorAttempts > 0 {
		boot.Attempts = cfg.Client.VisitorAttempts
	}
	boot.RefreshInterval = cfg.Client.VisitorRefresh

	zlog.Info().
		Str("api", cfg.Client.APIBaseURL).
		Strs("watch", cfg.Client.WatchKeys).
		Msg("👀 Watcher started")

	if err := boot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	id := boot.Identity()
	zlog.Info().
		Str("visitor_state", string(id.State)).
		Interface("badges", watcher.Counts()).
		Msg("✅ Watcher exited gracefully")
	return nil
}
