// Package knowledge turns an uploaded document into a searchable index:
// pages are extracted, split into overlapping chunks, embedded and written
// to a vector store table owned by one study topic.
package knowledge

import (
	"context"
)

// Document is an uploaded file. Name carries the extension used to pick a
// Reader.
type Document struct {
	Name string
	Data []byte
}

// Page is the extracted text of one page, numbered from 1.
type Page struct {
	Number int
	Text   string
}

// Reader extracts page text from a file on disk.
type Reader interface {
	ReadPages(ctx context.Context, path string) ([]Page, error)
}

// ReaderFunc adapts a function to Reader.
type ReaderFunc func(ctx context.Context, path string) ([]Page, error)

func (f ReaderFunc) ReadPages(ctx context.Context, path string) ([]Page, error) {
	return f(ctx, path)
}

// Chunk is one embedded slice of a document.
type Chunk struct {
	ID     string
	Page   int
	Index  int
	Text   string
	Vector []float32
}

// Match is a search hit. Score is cosine similarity, higher is closer.
type Match struct {
	Chunk
	Score float32
}

// VectorStore persists chunk vectors in named tables.
type VectorStore interface {
	// EnsureTable creates table for vectors of size dim if it does not
	// exist and reports whether it did the creating.
	EnsureTable(ctx context.Context, table string, dim int) (created bool, err error)

	// Upsert writes chunks, replacing any with the same ID.
	Upsert(ctx context.Context, table string, chunks []Chunk) error

	// Search returns up to k chunks nearest to vector, best first.
	Search(ctx context.Context, table string, vector []float32, k int) ([]Match, error)

	DropTable(ctx context.Context, table string) error

	Close() error
}
