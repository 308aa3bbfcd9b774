// Package config loads studyscout settings from an optional YAML file and
// STUDYSCOUT_* environment variables, in that order of precedence (env
// wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/vectordb"
)

const (
	MemoryInProcess = "memory"
	MemoryRedis     = "redis"
)

type Config struct {
	// Mode selects the log format: "dev" or "prod".
	Mode string `yaml:"mode"`

	// DB is the SQLite event log path; empty uses the default location.
	DB string `yaml:"db"`

	LLM       llm.Config       `yaml:"llm"`
	Vector    vectordb.Config  `yaml:"vector"`
	Memory    MemoryConfig     `yaml:"memory"`
	Ingest    knowledge.Config `yaml:"ingest"`
	OCR       OCRConfig        `yaml:"ocr"`
	Assistant assistant.Config `yaml:"assistant"`
	Quiz      QuizConfig       `yaml:"quiz"`
	Server    ServerConfig     `yaml:"server"`
}

// MemoryConfig selects where chat history for the assistant lives.
type MemoryConfig struct {
	Backend string                `yaml:"backend"`
	Redis   assistant.RedisConfig `yaml:"redis"`
}

type OCRConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Languages    []string `yaml:"languages"`
	MinTextRunes int      `yaml:"min_text_runes"`
}

type QuizConfig struct {
	DefaultCount     int  `yaml:"default_count"`
	StrictRegenerate bool `yaml:"strict_regenerate"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	MaxUploadMB    int      `yaml:"max_upload_mb"`
	SessionSecret  string   `yaml:"session_secret"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

func Default() Config {
	return Config{
		Mode:      "dev",
		LLM:       llm.DefaultConfig(),
		Vector:    vectordb.DefaultConfig(),
		Memory:    MemoryConfig{Backend: MemoryInProcess},
		Ingest:    knowledge.DefaultConfig(),
		OCR:       OCRConfig{Enabled: true, Languages: []string{"eng"}, MinTextRunes: 20},
		Assistant: assistant.DefaultConfig(),
		Quiz:      QuizConfig{DefaultCount: 5},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadMB:    50,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/studyscout/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "studyscout", "config.yaml"), nil
}

// Load reads path over the defaults and applies environment overrides.
// An empty path tries DefaultPath and silently skips it when absent.
// When no LLM credentials are configured, the vendors' own API key
// variables are checked.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	ApplyEnv(&cfg)

	if !cfg.LLM.HasCredentials() {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
			cfg.LLM.OpenAI.APIKey = found.OpenAI.APIKey
			cfg.LLM.Gemini.APIKey = found.Gemini.APIKey
			cfg.LLM.Anthropic.APIKey = found.Anthropic.APIKey
			cfg.LLM.OpenRouter.APIKey = found.OpenRouter.APIKey
		}
	}

	return cfg, cfg.Validate()
}

// ApplyEnv overrides cfg with any STUDYSCOUT_* variables that are set.
func ApplyEnv(cfg *Config) {
	llm.ApplyEnv(&cfg.LLM)

	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("STUDYSCOUT_MODE", &cfg.Mode)
	setString("STUDYSCOUT_DB", &cfg.DB)

	setString("STUDYSCOUT_VECTOR_BACKEND", &cfg.Vector.Backend)
	setString("STUDYSCOUT_PG_DSN", &cfg.Vector.Postgres.DSN)
	setString("STUDYSCOUT_WEAVIATE_HOST", &cfg.Vector.Weaviate.Host)
	setString("STUDYSCOUT_WEAVIATE_SCHEME", &cfg.Vector.Weaviate.Scheme)

	setString("STUDYSCOUT_MEMORY_BACKEND", &cfg.Memory.Backend)
	setString("STUDYSCOUT_REDIS_ADDR", &cfg.Memory.Redis.Addr)
	setString("STUDYSCOUT_REDIS_PASSWORD", &cfg.Memory.Redis.Password)

	setInt("STUDYSCOUT_CHUNK_SIZE", &cfg.Ingest.ChunkSize)
	setInt("STUDYSCOUT_CHUNK_OVERLAP", &cfg.Ingest.ChunkOverlap)
	if v := os.Getenv("STUDYSCOUT_OCR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.OCR.Enabled = b
		}
	}

	setString("STUDYSCOUT_SERVER_ADDR", &cfg.Server.Addr)
	setInt("STUDYSCOUT_MAX_UPLOAD_MB", &cfg.Server.MaxUploadMB)
	setString("STUDYSCOUT_SESSION_SECRET", &cfg.Server.SessionSecret)
}

// Validate checks settings that do not depend on the LLM provider. LLM
// credentials are checked when a provider is built, so commands that
// never call a model work without them.
func (c Config) Validate() error {
	var errs []error

	switch c.Mode {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Errorf("mode must be dev or prod, got %q", c.Mode))
	}
	if err := c.Vector.Validate(); err != nil {
		errs = append(errs, err)
	}
	switch c.Memory.Backend {
	case "", MemoryInProcess:
	case MemoryRedis:
		if c.Memory.Redis.Addr == "" {
			errs = append(errs, errors.New("memory.redis.addr is required for the redis memory backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown memory backend %q", c.Memory.Backend))
	}
	if c.Ingest.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize))
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		errs = append(errs, fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size), got %d", c.Ingest.ChunkOverlap))
	}
	if c.Quiz.DefaultCount < 1 {
		errs = append(errs, fmt.Errorf("quiz.default_count must be at least 1, got %d", c.Quiz.DefaultCount))
	}
	if c.Server.MaxUploadMB <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_mb must be positive, got %d", c.Server.MaxUploadMB))
	}
	return errors.Join(errs...)
}
