package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyscout/internal/assistant"
	"github.com/abhisek/studyscout/internal/config"
	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/knowledge/pdf"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/logger"
	"github.com/abhisek/studyscout/internal/store"
	"github.com/abhisek/studyscout/internal/study"
	"github.com/abhisek/studyscout/internal/vectordb"
)

// runtime is everything a command needs to work with topics. Close
// releases it in reverse order of construction.
type runtime struct {
	cfg    config.Config
	log    *logger.Logger
	db     *store.Store
	events store.EventRepo
	study  *study.Store

	closers []func() error
}

func (r *runtime) Close() error {
	var errs []error
	if r.study != nil {
		errs = append(errs, r.study.Close(context.Background()))
	}
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.log.Sync()
	return errors.Join(errs...)
}

// loadConfig reads --config and applies the --db override.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve DB path: %w", err)
	}
	cfg.DB = dbPath
	return cfg, nil
}

// newLogger honours --log-file. Without it, interactive commands discard
// logs since the terminal belongs to the UI.
func newLogger(cmd *cobra.Command, cfg config.Config, interactive bool) (*logger.Logger, error) {
	if p, _ := cmd.Flags().GetString("log-file"); p != "" {
		return logger.NewFile(p)
	}
	if interactive {
		return logger.Nop(), nil
	}
	return logger.New(cfg.Mode)
}

// openEvents opens only the event log, for commands that read history.
func openEvents(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// newRuntime wires the event log, LLM provider, embedder, vector store,
// document readers, assistant memory and the topic session store.
func newRuntime(ctx context.Context, cmd *cobra.Command, interactive bool) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cmd, cfg, interactive)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log}
	fail := func(err error) (*runtime, error) {
		_ = rt.Close()
		return nil, err
	}

	rt.db, err = store.Open(cfg.DB)
	if err != nil {
		return fail(fmt.Errorf("open store: %w", err))
	}
	rt.closers = append(rt.closers, rt.db.Close)
	rt.events = rt.db.EventRepo()

	provider, err := llm.NewProvider(ctx, cfg.LLM, rt.events, log.With("component", "llm"))
	if err != nil {
		return fail(fmt.Errorf("LLM provider not configured: %w", err))
	}
	embedder, err := llm.NewEmbedder(ctx, cfg.LLM)
	if err != nil {
		return fail(fmt.Errorf("embedder not configured: %w", err))
	}

	vectors, err := vectordb.Open(ctx, cfg.Vector, log.With("component", "vectordb"))
	if err != nil {
		return fail(fmt.Errorf("open vector store: %w", err))
	}
	if c, ok := vectors.(io.Closer); ok {
		rt.closers = append(rt.closers, c.Close)
	}

	var memory assistant.Memory
	if cfg.Memory.Backend == config.MemoryRedis {
		rm, err := assistant.NewRedisMemory(ctx, cfg.Memory.Redis)
		if err != nil {
			return fail(fmt.Errorf("connect chat memory: %w", err))
		}
		rt.closers = append(rt.closers, rm.Close)
		memory = rm
	}

	search, err := llm.NewWebSearcher(ctx, cfg.LLM)
	if err != nil {
		return fail(err)
	}

	ingester := knowledge.NewIngester(documentReaders(cfg, log), embedder, vectors, cfg.Ingest, log.With("component", "ingest"))
	factory := assistant.NewFactory(provider, memory, cfg.Assistant, log.With("component", "assistant")).
		WithSearch(search)

	rt.study = study.NewStore(ingester, factory, study.Options{
		StrictRegenerate: cfg.Quiz.StrictRegenerate,
		ReleaseOnClose:   cfg.Vector.Backend == "" || cfg.Vector.Backend == vectordb.BackendMemory,
		Events:           rt.events,
		Log:              log.With("component", "study"),
	})
	return rt, nil
}

func documentReaders(cfg config.Config, log *logger.Logger) knowledge.Readers {
	reader := &pdf.Reader{
		MinTextRunes: cfg.OCR.MinTextRunes,
		TempDir:      cfg.Ingest.TempDir,
		Log:          log.With("component", "pdf"),
	}
	if cfg.OCR.Enabled {
		reader.OCR = pdf.TesseractOCR{Languages: cfg.OCR.Languages}
	}
	return knowledge.Readers{
		".pdf": reader,
		".txt": knowledge.TextReader{},
	}
}
