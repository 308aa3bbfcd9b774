package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyscout/internal/apperr"
	"github.com/abhisek/studyscout/internal/llm"
	"github.com/abhisek/studyscout/internal/logger"
)

// Config tunes ingestion.
type Config struct {
	// ChunkSize and ChunkOverlap are in runes.
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	EmbedBatchSize   int `yaml:"embed_batch_size"`
	EmbedConcurrency int `yaml:"embed_concurrency"`

	// TempDir is where uploads are staged; empty uses the OS default.
	TempDir string `yaml:"temp_dir"`

	// Recreate drops an existing table before loading. When false an
	// existing table is reused and chunks are upserted by ID.
	Recreate bool `yaml:"recreate"`

	// MaxDocumentBytes rejects larger uploads; 0 means no limit.
	MaxDocumentBytes int64 `yaml:"max_document_bytes"`
}

// DefaultConfig returns the ingestion defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:        1000,
		ChunkOverlap:     200,
		EmbedBatchSize:   32,
		EmbedConcurrency: 4,
		MaxDocumentBytes: 50 << 20,
	}
}

// Readers maps a lowercase file extension (".pdf") to its Reader.
type Readers map[string]Reader

// Ingester builds knowledge handles from uploaded documents.
type Ingester struct {
	readers  Readers
	embedder llm.Embedder
	store    VectorStore
	cfg      Config
	log      *logger.Logger
}

func NewIngester(readers Readers, embedder llm.Embedder, store VectorStore, cfg Config, log *logger.Logger) *Ingester {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultConfig().EmbedBatchSize
	}
	if cfg.EmbedConcurrency <= 0 {
		cfg.EmbedConcurrency = 1
	}
	return &Ingester{readers: readers, embedder: embedder, store: store, cfg: cfg, log: log}
}

// Ingest stages doc to a temporary file, extracts and chunks its text,
// embeds the chunks and loads them into table. The staged file is removed
// on every path. A table created by a failed attempt is dropped again.
// All failures are *apperr.IngestionError.
func (in *Ingester) Ingest(ctx context.Context, doc Document, table string) (*Handle, error) {
	log := in.log.With("table", table, "document", doc.Name)

	if len(doc.Data) == 0 {
		return nil, apperr.Ingestion("read document", errors.New("document is empty"))
	}
	if in.cfg.MaxDocumentBytes > 0 && int64(len(doc.Data)) > in.cfg.MaxDocumentBytes {
		return nil, apperr.Ingestion("read document",
			fmt.Errorf("document is %d bytes, limit is %d", len(doc.Data), in.cfg.MaxDocumentBytes))
	}

	ext := strings.ToLower(filepath.Ext(doc.Name))
	reader, ok := in.readers[ext]
	if !ok {
		return nil, apperr.Ingestion("read document", fmt.Errorf("unsupported document type %q", ext))
	}

	path, cleanup, err := in.stage(doc.Data, ext)
	if err != nil {
		return nil, apperr.Ingestion("stage document", err)
	}
	defer cleanup()

	pages, err := reader.ReadPages(ctx, path)
	if err != nil {
		return nil, apperr.Ingestion("extract text", err)
	}

	chunks := chunkPages(pages, in.cfg.ChunkSize, in.cfg.ChunkOverlap)
	if len(chunks) == 0 {
		return nil, apperr.Ingestion("extract text", errors.New("document has no extractable text"))
	}
	for i := range chunks {
		chunks[i].ID = chunkID(table, chunks[i].Index)
	}

	if err := in.embedChunks(ctx, chunks); err != nil {
		return nil, apperr.Ingestion("embed chunks", err)
	}

	if in.cfg.Recreate {
		if err := in.store.DropTable(ctx, table); err != nil {
			return nil, apperr.Ingestion("recreate table", err)
		}
	}

	created, err := in.store.EnsureTable(ctx, table, in.embedder.Dimensions())
	if err != nil {
		return nil, apperr.Ingestion("create table", err)
	}

	if err := in.store.Upsert(ctx, table, chunks); err != nil {
		if created {
			if dropErr := in.store.DropTable(context.WithoutCancel(ctx), table); dropErr != nil {
				log.Warn("failed to drop table after failed load", "error", dropErr)
			}
		}
		return nil, apperr.Ingestion("load vectors", err)
	}

	log.Info("document ingested", "pages", len(pages), "chunks", len(chunks), "created", created)

	return &Handle{
		Table:    table,
		Pages:    len(pages),
		Chunks:   len(chunks),
		store:    in.store,
		embedder: in.embedder,
	}, nil
}

// stage writes data to a fresh temp file and returns its path plus a
// cleanup that removes it.
func (in *Ingester) stage(data []byte, ext string) (string, func(), error) {
	f, err := os.CreateTemp(in.cfg.TempDir, "studyscout-*"+ext)
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			in.log.Warn("failed to remove staged document", "path", path, "error", err)
		}
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// embedChunks fills in every chunk's vector, embedding batches in parallel.
func (in *Ingester) embedChunks(ctx context.Context, chunks []Chunk) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.cfg.EmbedConcurrency)

	dims := in.embedder.Dimensions()
	for start := 0; start < len(chunks); start += in.cfg.EmbedBatchSize {
		batch := chunks[start:min(start+in.cfg.EmbedBatchSize, len(chunks))]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}
			vecs, err := in.embedder.Embed(gctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(batch) {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vecs), len(batch))
			}
			for i, v := range vecs {
				if len(v) != dims {
					return fmt.Errorf("embedder returned %d dimensions, expected %d", len(v), dims)
				}
				batch[i].Vector = v
			}
			return nil
		})
	}
	return g.Wait()
}

func chunkID(table string, index int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "studyscout:%s#%d", table, index)).String()
}
