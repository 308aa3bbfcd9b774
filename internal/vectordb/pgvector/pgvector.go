// Package pgvector stores chunk vectors in Postgres with the pgvector
// extension. Each topic gets its own table.
package pgvector

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/studyscout/internal/knowledge"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ knowledge.VectorStore = (*Store)(nil)

// Open connects to dsn and makes sure the vector extension is installed.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("enable pgvector: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) EnsureTable(ctx context.Context, table string, dim int) (bool, error) {
	if dim <= 0 {
		return false, fmt.Errorf("invalid vector dimension %d", dim)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT to_regclass($1) IS NOT NULL`, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table %s: %w", table, err)
	}
	if exists {
		return false, nil
	}

	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id        TEXT PRIMARY KEY,
		page      INTEGER NOT NULL,
		idx       INTEGER NOT NULL,
		content   TEXT NOT NULL,
		embedding vector(%d) NOT NULL
	)`, ident(table), dim))
	if err != nil {
		return false, fmt.Errorf("create table %s: %w", table, err)
	}
	return true, nil
}

func (s *Store) Upsert(ctx context.Context, table string, chunks []knowledge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, page, idx, content, embedding)
		VALUES ($1, $2, $3, $4, $5::vector)
		ON CONFLICT (id) DO UPDATE SET
			page = EXCLUDED.page,
			idx = EXCLUDED.idx,
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding`, ident(table))

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(query, c.ID, c.Page, c.Index, c.Text, vectorLiteral(c.Vector))
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert into %s: %w", table, err)
	}
	return tx.Commit(ctx)
}

func (s *Store) Search(ctx context.Context, table string, vector []float32, k int) ([]knowledge.Match, error) {
	if k <= 0 {
		k = knowledge.DefaultTopK
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT id, page, idx, content, 1 - (embedding <=> $1::vector)
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2`, ident(table)), vectorLiteral(vector), k)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", table, err)
	}
	defer rows.Close()

	var out []knowledge.Match
	for rows.Next() {
		var m knowledge.Match
		var score float64
		if err := rows.Scan(&m.ID, &m.Page, &m.Index, &m.Text, &score); err != nil {
			return nil, err
		}
		m.Score = float32(score)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) DropTable(ctx context.Context, table string) error {
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS `+ident(table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func ident(table string) string {
	return pgx.Identifier{table}.Sanitize()
}

// vectorLiteral formats v in pgvector's text form, e.g. "[0.1,0.2]".
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*10 + 2)
	b.WriteByte('[')
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
