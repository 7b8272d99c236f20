// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config is the complete runtime configuration.
type Config struct {
	Server   ServerConfig
	Logging  LoggingConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	HTTP     HTTPConfig
}

type ServerConfig struct {
	Addr            string        `env:"HTTP_ADDR,default=0.0.0.0:8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`
}

type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL,default=debug"`
	Format string `env:"LOG_FORMAT,default=text"`
}

// StorageConfig selects the todo and character backends.
type StorageConfig struct {
	TodoStore         string `env:"TODO_STORE,default=memory"`
	CharacterStore    string `env:"CHARACTER_STORE,default=memory"`
	CharacterSeedFile string `env:"CHARACTER_SEED_FILE"`
}

type DatabaseConfig struct {
	DSN          string `env:"DATABASE_URL"`
	MaxOpenConns int    `env:"DATABASE_MAX_OPEN_CONNS,default=10"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,default=0"`
	TodoKey  string `env:"REDIS_TODO_KEY,default=fatesheet:todos"`
}

// HTTPConfig holds middleware and rendering options.
type HTTPConfig struct {
	RateLimitRPS   int    `env:"RATE_LIMIT_RPS,default=0"`
	RateLimitBurst int    `env:"RATE_LIMIT_BURST,default=20"`
	CORSOrigins    string `env:"CORS_ALLOWED_ORIGINS"`
	RenderDebug    bool   `env:"RENDER_DEBUG,default=false"`
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS on commas.
func (c HTTPConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(c.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// Load reads .env when present and decodes the environment.
func Load() (*Config, error) {
	return LoadWithEnvFile(".env")
}

// LoadWithEnvFile is Load with an explicit dotenv path. A missing file is not
// an error; variables already set in the environment win over the file.
func LoadWithEnvFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Storage.TodoStore = strings.ToLower(strings.TrimSpace(c.Storage.TodoStore))
	c.Storage.CharacterStore = strings.ToLower(strings.TrimSpace(c.Storage.CharacterStore))
	if c.Storage.TodoStore == "" {
		c.Storage.TodoStore = BackendMemory
	}
	if c.Storage.CharacterStore == "" {
		c.Storage.CharacterStore = BackendMemory
	}
}

// Validate checks backend names and their required settings.
func (c *Config) Validate() error {
	switch c.Storage.TodoStore {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("TODO_STORE: unsupported backend %q", c.Storage.TodoStore)
	}
	switch c.Storage.CharacterStore {
	case BackendMemory, BackendPostgres:
	default:
		return fmt.Errorf("CHARACTER_STORE: unsupported backend %q", c.Storage.CharacterStore)
	}
	if c.UsesPostgres() && strings.TrimSpace(c.Database.DSN) == "" {
		return errors.New("DATABASE_URL is required when a postgres store is selected")
	}
	if c.HTTP.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	return nil
}

// UsesPostgres reports whether any store needs a database connection.
func (c *Config) UsesPostgres() bool {
	return c.Storage.TodoStore == BackendPostgres || c.Storage.CharacterStore == BackendPostgres
}
