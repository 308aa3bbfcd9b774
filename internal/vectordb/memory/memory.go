// Package memory is an in-process vector store. Tables live only as long as
// the Store; it backs tests and the offline mode.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/abhisek/studyscout/internal/knowledge"
)

type table struct {
	dim    int
	order  []string
	chunks map[string]knowledge.Chunk
}

// Store keeps vectors in maps guarded by a single mutex.
type Store struct {
	mu     sync.RWMutex
	tables map[string]*table
}

func New() *Store {
	return &Store{tables: make(map[string]*table)}
}

func (s *Store) EnsureTable(_ context.Context, name string, dim int) (bool, error) {
	if dim <= 0 {
		return false, fmt.Errorf("invalid vector dimension %d", dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tables[name]; ok {
		if t.dim != dim {
			return false, fmt.Errorf("table %s holds %d-dimension vectors, not %d", name, t.dim, dim)
		}
		return false, nil
	}
	s.tables[name] = &table{dim: dim, chunks: make(map[string]knowledge.Chunk)}
	return true, nil
}

func (s *Store) Upsert(_ context.Context, name string, chunks []knowledge.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tables[name]
	if !ok {
		return fmt.Errorf("table %s does not exist", name)
	}
	for _, c := range chunks {
		if len(c.Vector) != t.dim {
			return fmt.Errorf("chunk %s has %d dimensions, table %s expects %d", c.ID, len(c.Vector), name, t.dim)
		}
	}
	for _, c := range chunks {
		if _, exists := t.chunks[c.ID]; !exists {
			t.order = append(t.order, c.ID)
		}
		c.Vector = append([]float32(nil), c.Vector...)
		t.chunks[c.ID] = c
	}
	return nil
}

func (s *Store) Search(_ context.Context, name string, vector []float32, k int) ([]knowledge.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", name)
	}
	if len(vector) != t.dim {
		return nil, fmt.Errorf("query has %d dimensions, table %s expects %d", len(vector), name, t.dim)
	}

	matches := make([]knowledge.Match, 0, len(t.order))
	for _, id := range t.order {
		c := t.chunks[id]
		matches = append(matches, knowledge.Match{Chunk: c, Score: cosine(vector, c.Vector)})
	}
	// Stable keeps insertion order among ties.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *Store) DropTable(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
	return nil
}

// HasTable reports whether name exists.
func (s *Store) HasTable(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.tables[name]
	return ok
}

// Len returns the number of chunks in name.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tables[name]; ok {
		return len(t.chunks)
	}
	return 0
}

func (s *Store) Close() error { return nil }

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
