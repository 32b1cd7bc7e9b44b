// Package config loads runtime settings from the environment and an optional
// YAML tables file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/taskquest/internal/llm"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// StoreKind selects the record store backend.
type StoreKind string

const (
	StoreSQLite StoreKind = "sqlite"
	StoreMongo  StoreKind = "mongo"
	StoreNone   StoreKind = "none"
)

// SessionKind selects where session contexts live.
type SessionKind string

const (
	SessionMemory SessionKind = "memory"
	SessionRedis  SessionKind = "redis"
)

const (
	defaultMongoDB     = "taskquest"
	defaultUser        = "local"
	defaultAddr        = ":8080"
	defaultSessionTTL  = 60 * time.Minute
	defaultEnvironment = "development"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Store    StoreKind
	DBPath   string
	MongoURI string
	MongoDB  string

	Sessions   SessionKind
	RedisURL   string
	SessionTTL time.Duration

	DefaultUser string
	Addr        string

	Debug       bool
	Environment string

	TablesPath string
	Tables     Tables

	LLM llm.LLMConfig
}

// Production reports whether logs should use the production encoder.
func (c Config) Production() bool {
	return c.Environment == "production"
}

// Load reads the TASKQUEST_* environment, loads the tables file if one is
// named, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		Store:       StoreKind(strings.ToLower(envOr("TASKQUEST_STORE", string(StoreSQLite)))),
		DBPath:      os.Getenv("TASKQUEST_DB"),
		MongoURI:    os.Getenv("TASKQUEST_MONGO_URI"),
		MongoDB:     envOr("TASKQUEST_MONGO_DB", defaultMongoDB),
		Sessions:    SessionKind(strings.ToLower(envOr("TASKQUEST_SESSIONS", string(SessionMemory)))),
		RedisURL:    os.Getenv("TASKQUEST_REDIS_URL"),
		SessionTTL:  defaultSessionTTL,
		DefaultUser: envOr("TASKQUEST_USER", defaultUser),
		Addr:        envOr("TASKQUEST_ADDR", defaultAddr),
		Debug:       os.Getenv("TASKQUEST_DEBUG") == "true",
		Environment: envOr("TASKQUEST_ENV", defaultEnvironment),
		TablesPath:  os.Getenv("TASKQUEST_TABLES"),
		LLM:         llm.LoadConfig(),
	}

	if cfg.DBPath == "" && cfg.Store == StoreSQLite {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".taskquest", "taskquest.db")
	}

	if v := os.Getenv("TASKQUEST_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: TASKQUEST_SESSION_TTL: %v", ErrInvalid, err)
		}
		cfg.SessionTTL = ttl
	}

	if cfg.TablesPath != "" {
		tables, err := LoadTables(cfg.TablesPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Tables = tables
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem at once, wrapped in ErrInvalid.
func (c Config) Validate() error {
	var problems []error

	switch c.Store {
	case StoreSQLite:
		if c.DBPath == "" {
			problems = append(problems, errors.New("sqlite store needs TASKQUEST_DB"))
		}
	case StoreMongo:
		if c.MongoURI == "" {
			problems = append(problems, errors.New("mongo store needs TASKQUEST_MONGO_URI"))
		}
		if c.MongoDB == "" {
			problems = append(problems, errors.New("mongo store needs TASKQUEST_MONGO_DB"))
		}
	case StoreNone:
	default:
		problems = append(problems, fmt.Errorf("unknown store %q (want sqlite, mongo, or none)", c.Store))
	}

	switch c.Sessions {
	case SessionMemory:
	case SessionRedis:
		if c.RedisURL == "" {
			problems = append(problems, errors.New("redis sessions need TASKQUEST_REDIS_URL"))
		}
	default:
		problems = append(problems, fmt.Errorf("unknown session store %q (want memory or redis)", c.Sessions))
	}

	if c.SessionTTL <= 0 {
		problems = append(problems, fmt.Errorf("session ttl must be positive, got %s", c.SessionTTL))
	}
	if strings.TrimSpace(c.DefaultUser) == "" {
		problems = append(problems, errors.New("default user must not be empty"))
	}
	if c.Addr == "" {
		problems = append(problems, errors.New("listen address must not be empty"))
	}
	if c.LLM.Enabled && c.LLM.Provider == llm.ProviderGemini && c.LLM.APIKey == "" {
		problems = append(problems, errors.New("gemini provider needs TASKQUEST_LLM_API_KEY"))
	}
	if err := c.Tables.Validate(); err != nil {
		problems = append(problems, err)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(problems...))
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
