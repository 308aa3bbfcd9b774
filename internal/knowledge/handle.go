package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/studyscout/internal/llm"
)

// DefaultTopK is the number of chunks Search returns when k <= 0.
const DefaultTopK = 5

// Handle is a loaded document. It is immutable; the owning topic session
// calls Release when it is discarded.
type Handle struct {
	Table  string
	Pages  int
	Chunks int

	store    VectorStore
	embedder llm.Embedder
}

// NewHandle binds an existing table. Used when a table was loaded by an
// earlier process run.
func NewHandle(table string, store VectorStore, embedder llm.Embedder) *Handle {
	return &Handle{Table: table, store: store, embedder: embedder}
}

// Search embeds query and returns the k closest chunks, best first.
func (h *Handle) Search(ctx context.Context, query string, k int) ([]Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}
	if k <= 0 {
		k = DefaultTopK
	}

	vecs, err := h.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 query", len(vecs))
	}

	matches, err := h.store.Search(ctx, h.Table, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", h.Table, err)
	}
	return matches, nil
}

// Release drops the backing table.
func (h *Handle) Release(ctx context.Context) error {
	return h.store.DropTable(ctx, h.Table)
}
