package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"gurucool"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"gurucool"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	EmbedModel   string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`
	GenModel     string `envconfig:"GEN_MODEL" default:"gemini-1.5-flash"`

	// APIKey guards every endpoint via the GuruCool-API-Key header.
	// Empty disables the check, for local development.
	APIKey string `envconfig:"GURUCOOL_API_KEY"`

	DataPath  string `envconfig:"DATA_PATH" default:"data/documents"`
	CachePath string `envconfig:"CACHE_PATH" default:"data/cache"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`

	EnableAPI         bool `envconfig:"ENABLE_API" default:"true"`
	EnableBuildWorker bool `envconfig:"ENABLE_BUILD_WORKER" default:"true"`
	EnableSweeper     bool `envconfig:"ENABLE_SWEEPER" default:"true"`

	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"2h"`
	SweepRetention time.Duration `envconfig:"SWEEP_RETENTION" default:"24h"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"1h"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Server
	ServerPort   int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may come from the shell instead; a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.DataPath == "" {
		return fmt.Errorf("%w: DATA_PATH", ErrMissingRequired)
	}
	if c.CachePath == "" {
		return fmt.Errorf("%w: CACHE_PATH", ErrMissingRequired)
	}
	return nil
}
