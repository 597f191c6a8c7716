package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultAdminPassword = "admin123"
)

// Config is populated from environment variables (optionally a .env file
// loaded by the entrypoints with godotenv).
type Config struct {
	App     AppConfig
	Store   StoreConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Admin   AdminConfig
	MinIO   MinIOConfig
	Client  ClientConfig
	Worker  WorkerConfig
	Limiter LimiterConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	SiteURL     string // public site root, used for the sitemap
	CORSOrigins []string
}

// StoreConfig picks the kv backend behind the local store.
type StoreConfig struct {
	Backend  string // memory, file, redis, postgres
	FilePath string
	Seed     bool
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
	Prefix   string
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

type AdminConfig struct {
	Username string
	Password string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// ClientConfig drives the client-side layers (remote client, query cache,
// visitor bootstrap).
type ClientConfig struct {
	APIBaseURL       string
	StateFile        string
	StaleTime        time.Duration
	PollInterval     time.Duration
	CacheTime        time.Duration
	ReadRetries      int
	MutationTimeout  time.Duration
	VisitorAttempts  int
	VisitorRefresh   time.Duration
	WatchKeys        []string
	PersistSnapshots bool
}

type WorkerConfig struct {
	Concurrency      int
	SitemapCron      string
	SnapshotCron     string
	SnapshotKeep     int // snapshots retained in object storage
	HealthListenAddr string
}

// LimiterConfig throttles anonymous visitor registration per client IP.
type LimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Tova ku Status API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			SiteURL:     getEnv("SITE_URL", "https://tovakustatus.org"),
			CORSOrigins: getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Store: StoreConfig{
			Backend:  getEnv("STORE_BACKEND", "memory"),
			FilePath: getEnv("STORE_FILE", "./data/store.json"),
			Seed:     getEnvBool("STORE_SEED", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "tks:"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvDuration("JWT_ACCESS_EXPIRY", 24*time.Hour),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "admin"),
			Password: getEnv("ADMIN_PASSWORD", defaultAdminPassword),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "tovakustatus"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Client: ClientConfig{
			APIBaseURL:       getEnv("API_BASE_URL", "http://localhost:8080/api/v1"),
			StateFile:        getEnv("CLIENT_STATE_FILE", "./data/client-state.json"),
			StaleTime:        getEnvDuration("QUERY_STALE_TIME", 10*time.Second),
			PollInterval:     getEnvDuration("QUERY_POLL_INTERVAL", 5*time.Second),
			CacheTime:        getEnvDuration("QUERY_CACHE_TIME", 5*time.Minute),
			ReadRetries:      getEnvInt("QUERY_READ_RETRIES", 3),
			MutationTimeout:  getEnvDuration("MUTATION_TIMEOUT", 10*time.Second),
			VisitorAttempts:  getEnvInt("VISITOR_REGISTER_ATTEMPTS", 3),
			VisitorRefresh:   getEnvDuration("VISITOR_REFRESH_INTERVAL", 5*time.Minute),
			WatchKeys:        getEnvList("WATCH_KEYS", []string{"events/all", "blogs/all"}),
			PersistSnapshots: getEnvBool("QUERY_PERSIST_SNAPSHOTS", true),
		},
		Worker: WorkerConfig{
			Concurrency:      getEnvInt("WORKER_CONCURRENCY", 5),
			SitemapCron:      getEnv("SITEMAP_CRON", "0 * * * *"),
			SnapshotCron:     getEnv("SNAPSHOT_CRON", "30 2 * * *"),
			SnapshotKeep:     getEnvInt("SNAPSHOT_KEEP", 14),
			HealthListenAddr: getEnv("WORKER_HEALTH_ADDR", ":9999"),
		},
		Limiter: LimiterConfig{
			RequestsPerSecond: getEnvFloat("VISITOR_RATE_LIMIT", 1),
			Burst:             getEnvInt("VISITOR_RATE_BURST", 5),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "file", "redis", "postgres":
	default:
		return fmt.Errorf("STORE_BACKEND must be one of memory, file, redis, postgres (got %q)", c.Store.Backend)
	}
	if c.Client.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL must not be empty")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Admin.Password == defaultAdminPassword {
			return fmt.Errorf("ADMIN_PASSWORD must be changed in production")
		}
		if c.Store.Backend == "memory" {
			log.Warn().Msg("STORE_BACKEND=memory in production: content is lost on restart")
		}
	}

	return nil
}

func (c *Config) IsProduction() bool { return c.App.Environment == "production" }

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
