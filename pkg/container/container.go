package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"tovakustatus-backend/internal/config"
	"tovakustatus-backend/internal/domains/auth"
	"tovakustatus-backend/internal/domains/content"
	contentHandler "tovakustatus-backend/internal/domains/content/handler"
	"tovakustatus-backend/internal/domains/newsletter"
	"tovakustatus-backend/internal/domains/settings"
	"tovakustatus-backend/internal/domains/sitemap"
	"tovakustatus-backend/internal/domains/visitor"
	"tovakustatus-backend/internal/infrastructure/cache"
	"tovakustatus-backend/internal/infrastructure/database"
	"tovakustatus-backend/internal/infrastructure/filestore"
	"tovakustatus-backend/internal/infrastructure/memory"
	"tovakustatus-backend/internal/localstore"
	"tovakustatus-backend/internal/model"
	"tovakustatus-backend/internal/shared/middleware"
	"tovakustatus-backend/pkg/jwt"
	"tovakustatus-backend/pkg/kv"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph shared by the API and the
// worker. Everything is a singleton for the lifetime of the process.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	Backend     kv.Store             // selected by STORE_BACKEND
	DB          *database.PostgresDB // only with STORE_BACKEND=postgres
	Store       *localstore.Store
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	RateLimiter *middleware.IPRateLimiter

	// ========================================
	// SERVICE LAYER
	// ========================================
	TalentService     *content.Service[model.Talent, *model.Talent]
	ProjectService    *content.Service[model.Project, *model.Project]
	EventService      *content.EventService
	BlogService       *content.Service[model.BlogPost, *model.BlogPost]
	NewsletterService *newsletter.Service
	AuthService       *auth.Service
	VisitorService    *visitor.Service
	SettingsService   *settings.Service
	Sitemap           *sitemap.Generator

	// ========================================
	// HANDLER LAYER (HTTP)
	// ========================================
	TalentHandler     *contentHandler.Handler[model.Talent, *model.Talent]
	ProjectHandler    *contentHandler.Handler[model.Project, *model.Project]
	EventHandler      *contentHandler.EventHandler
	BlogHandler       *contentHandler.Handler[model.BlogPost, *model.BlogPost]
	NewsletterHandler *newsletter.Handler
	AuthHandler       *auth.Handler
	VisitorHandler    *visitor.Handler
	SettingsHandler   *settings.Handler
	SitemapHandler    *sitemap.Handler
}

// NewContainer builds the dependency graph in order:
// config -> kv backend -> local store -> services -> handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s, Store: %s)", cfg.App.Environment, cfg.Store.Backend)

	// ========================================
	// STEP 2: KV BACKEND
	// ========================================
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.initBackend(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init store backend: %w", err)
	}

	// ========================================
	// STEP 3: LOCAL STORE
	// ========================================
	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
	c.Store = localstore.New(c.Backend,
		localstore.WithCredentials(cfg.Admin.Username, cfg.Admin.Password),
		localstore.WithTokenIssuer(func(username string) (string, error) {
			return c.JWTManager.GenerateAccessToken(username, jwt.RoleAdmin)
		}),
	)

	if cfg.Store.Seed {
		log.Println("🌱 Seeding local store...")
		if err := c.Store.Initialize(ctx); err != nil {
			c.Cleanup()
			return nil, fmt.Errorf("failed to seed store: %w", err)
		}
	}
	log.Println("✅ Local store ready")

	// asynq dials lazily, so building the client never blocks startup.
	c.AsynqClient = asynq.NewClient(c.RedisConnOpt())
	c.RateLimiter = middleware.NewIPRateLimiter(cfg.Limiter.RequestsPerSecond, cfg.Limiter.Burst)

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	log.Println("⚙️  Initializing services...")
	c.initServices()
	log.Println("✅ Services initialized")

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")
	c.initHandlers()
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// RedisConnOpt is the asynq connection shared by the API client, the worker
// server and the scheduler.
func (c *Container) RedisConnOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Config.Redis.Host,
		Password: c.Config.Redis.Password,
		DB:       c.Config.Redis.DB,
	}
}

func (c *Container) initBackend(ctx context.Context) error {
	cfg := c.Config

	switch cfg.Store.Backend {
	case "memory":
		c.Backend = memory.NewStore()
		log.Println("🧠 Using in-memory store (data is lost on restart)")

	case "file":
		c.Backend = filestore.New(cfg.Store.FilePath)
		log.Printf("📄 Using file store at %s", cfg.Store.FilePath)

	case "redis":
		log.Println("🔴 Connecting to Redis...")
		rs := cache.NewRedisStore(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err := rs.Connect(ctx); err != nil {
			_ = rs.Close()
			return err
		}
		c.Backend = rs
		log.Println("✅ Redis connected")

	case "postgres":
		log.Println("🗄️  Connecting to PostgreSQL...")
		dbConfig, err := config.LoadDatabaseConfig()
		if err != nil {
			return fmt.Errorf("failed to load database config: %w", err)
		}
		db := database.NewPostgresDB(dbConfig)
		if err := db.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db

		store := database.NewKVStore(db)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate kv table: %w", err)
		}
		c.Backend = store
		log.Println("✅ Database connected")

	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	return nil
}

func (c *Container) initServices() {
	s := c.Store

	c.TalentService = content.NewService("talent", localstore.NewRepository[model.Talent](s, localstore.KeyTalents))
	c.ProjectService = content.NewService("project", localstore.NewRepository[model.Project](s, localstore.KeyProjects))
	c.EventService = content.NewEventService(
		content.NewService("event", localstore.NewRepository[model.Event](s, localstore.KeyEvents)),
	)
	c.BlogService = content.NewService("blog post", localstore.NewRepository[model.BlogPost](s, localstore.KeyBlogPosts))

	c.NewsletterService = newsletter.NewService(
		localstore.NewRepository[model.NewsletterSubscriber](s, localstore.KeySubscribers),
	)
	c.VisitorService = visitor.NewService(localstore.NewRepository[model.Visitor](s, localstore.KeyVisitors))
	c.AuthService = auth.NewService(s, c.JWTManager)
	c.SettingsService = settings.NewService(s)
	c.Sitemap = sitemap.NewGenerator(c.Config.App.SiteURL, s)
}

func (c *Container) initHandlers() {
	c.TalentHandler = contentHandler.NewHandler(c.TalentService)
	c.ProjectHandler = contentHandler.NewHandler(c.ProjectService)
	c.EventHandler = contentHandler.NewEventHandler(c.EventService)
	c.BlogHandler = contentHandler.NewHandler(c.BlogService)
	c.NewsletterHandler = newsletter.NewHandler(c.NewsletterService)
	c.AuthHandler = auth.NewHandler(c.AuthService)
	c.VisitorHandler = visitor.NewHandler(c.VisitorService)
	c.SettingsHandler = settings.NewHandler(c.SettingsService)
	c.SitemapHandler = sitemap.NewHandler(c.Sitemap, c.AsynqClient)
}

// Cleanup releases connections. Safe to call on a partially built container.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("⚠️  Failed to close asynq client: %v", err)
		}
	}

	if c.Backend != nil {
		if err := c.Backend.Close(); err != nil {
			log.Printf("⚠️  Failed to close store backend: %v", err)
		} else {
			log.Println("✅ Store backend closed")
		}
	}

	// Covers a failed migration, where the pool exists but no backend does.
	if c.DB != nil {
		c.DB.Close()
	}

	log.Println("✅ Container cleanup completed")
}
