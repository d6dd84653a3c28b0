package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction = "production"

	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"

	ProviderGroq   = "groq"
	ProviderGemini = "gemini"

	// devJWTSecret signs tokens outside production when JWT_SECRET is unset.
	devJWTSecret = "dev-secret-change-me"
)

type Config struct {
	Port        string        `env:"PORT, default=5000"`
	Env         string        `env:"ENV, default=development"`
	JWTSecret   string        `env:"JWT_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL, default=168h"`
	LogLevel    string        `env:"LOG_LEVEL, default=info"`
	LogPretty   bool          `env:"LOG_PRETTY, default=false"`
	CORSOrigins []string      `env:"CORS_ORIGINS, default=*"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For. Only enable
	// it behind a proxy that overwrites the header.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS, default=false"`

	Storage  StorageConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Guidance GuidanceConfig
	Login    LoginConfig
}

type StorageConfig struct {
	Driver       string `env:"STORAGE_DRIVER, default=sqlite"`
	DatabasePath string `env:"DATABASE_PATH, default=./data/app.db"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=tutor"`
}

// RedisConfig selects the session and lockout backend. An empty Addr keeps
// both in process memory.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type LLMConfig struct {
	Provider     string        `env:"LLM_PROVIDER, default=groq"`
	GroqAPIKey   string        `env:"GROQ_API_KEY"`
	BaseURL      string        `env:"LLM_BASE_URL, default=https://api.groq.com/openai/v1"`
	Model        string        `env:"LLM_MODEL, default=llama-3.3-70b-versatile"`
	Timeout      time.Duration `env:"LLM_TIMEOUT, default=60s"`
	GeminiAPIKey string        `env:"GEMINI_API_KEY"`
	GeminiModel  string        `env:"GEMINI_MODEL, default=gemini-2.0-flash"`
}

type GuidanceConfig struct {
	HistoryLimit int           `env:"GUIDANCE_HISTORY_LIMIT, default=0"`
	SessionTTL   time.Duration `env:"SESSION_TTL, default=24h"`
}

type LoginConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	Window      time.Duration `env:"LOGIN_WINDOW, default=15m"`
	Block       time.Duration `env:"LOGIN_BLOCK, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l. Tests use envconfig.MapLookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

func (c *Config) normalize() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))

	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("config: JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	switch c.Storage.Driver {
	case StorageSQLite, StorageMongo:
	default:
		return fmt.Errorf("config: unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	switch c.LLM.Provider {
	case ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("config: unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}
	if c.Guidance.HistoryLimit < 0 {
		return errors.New("config: GUIDANCE_HISTORY_LIMIT must not be negative")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}
	return nil
}
