// Package vectordb selects a knowledge.VectorStore backend from config.
package vectordb

import (
	"context"
	"fmt"

	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/vectordb/memory"
	"github.com/abhisek/studyscout/internal/vectordb/pgvector"
	"github.com/abhisek/studyscout/internal/vectordb/weaviatedb"
)

const (
	BackendMemory   = "memory"
	BackendPgvector = "pgvector"
	BackendWeaviate = "weaviate"
)

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type Config struct {
	Backend  string            `yaml:"backend"`
	Postgres PostgresConfig    `yaml:"postgres"`
	Weaviate weaviatedb.Config `yaml:"weaviate"`
}

func DefaultConfig() Config {
	return Config{
		Backend:  BackendMemory,
		Weaviate: weaviatedb.Config{Host: "localhost:8080", Scheme: "http"},
	}
}

func (c Config) Validate() error {
	switch c.Backend {
	case "", BackendMemory:
	case BackendPgvector:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("vector backend %q needs vector.postgres.dsn", c.Backend)
		}
	case BackendWeaviate:
		if c.Weaviate.Host == "" {
			return fmt.Errorf("vector backend %q needs vector.weaviate.host", c.Backend)
		}
	default:
		return fmt.Errorf("unknown vector backend %q", c.Backend)
	}
	return nil
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (knowledge.VectorStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	switch cfg.Backend {
	case BackendPgvector:
		s, err := pgvector.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		log.Info("vector store ready", "backend", cfg.Backend)
		return s, nil
	case BackendWeaviate:
		s, err := weaviatedb.Open(ctx, cfg.Weaviate)
		if err != nil {
			return nil, err
		}
		log.Info("vector store ready", "backend", cfg.Backend, "host", cfg.Weaviate.Host)
		return s, nil
	default:
		log.Info("vector store ready", "backend", BackendMemory)
		return memory.New(), nil
	}
}
