// Package weaviatedb stores chunk vectors in Weaviate, one class per topic
// table, with vectorization disabled so the embeddings we compute are used
// as-is.
package weaviatedb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/abhisek/studyscout/internal/knowledge"
)

type Config struct {
	Host   string `yaml:"host"`
	Scheme string `yaml:"scheme"`
}

type Store struct {
	client *weaviate.Client
}

var _ knowledge.VectorStore = (*Store)(nil)

func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Scheme == "" {
		cfg.Scheme = "http"
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: cfg.Host, Scheme: cfg.Scheme})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	ready, err := client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate ready check: %w", err)
	}
	if !ready {
		return nil, fmt.Errorf("weaviate at %s is not ready", cfg.Host)
	}
	return &Store{client: client}, nil
}

func (s *Store) EnsureTable(ctx context.Context, table string, dim int) (bool, error) {
	if dim <= 0 {
		return false, fmt.Errorf("invalid vector dimension %d", dim)
	}

	class := className(table)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(class).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("check class %s: %w", class, err)
	}
	if exists {
		return false, nil
	}

	err = s.client.Schema().ClassCreator().WithClass(&models.Class{
		Class:       class,
		Description: "document chunks for " + table,
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "text", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "idx", DataType: []string{"int"}},
		},
	}).Do(ctx)
	if err != nil {
		return false, fmt.Errorf("create class %s: %w", class, err)
	}
	return true, nil
}

func (s *Store) Upsert(ctx context.Context, table string, chunks []knowledge.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	class := className(table)
	objects := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		objects[i] = &models.Object{
			Class: class,
			ID:    strfmt.UUID(c.ID),
			Properties: map[string]any{
				"text": c.Text,
				"page": c.Page,
				"idx":  c.Index,
			},
			Vector: c.Vector,
		}
	}

	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("batch write %s: %w", class, err)
	}
	return batchErrors(resp)
}

func (s *Store) Search(ctx context.Context, table string, vector []float32, k int) ([]knowledge.Match, error) {
	if k <= 0 {
		k = knowledge.DefaultTopK
	}

	class := className(table)
	gql := s.client.GraphQL()
	result, err := gql.Get().
		WithClassName(class).
		WithFields(
			graphql.Field{Name: "text"},
			graphql.Field{Name: "page"},
			graphql.Field{Name: "idx"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "id"}, {Name: "distance"}}},
		).
		WithNearVector(gql.NearVectorArgBuilder().WithVector(vector)).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", class, err)
	}
	if err := graphQLErrors(result); err != nil {
		return nil, fmt.Errorf("search %s: %w", class, err)
	}
	return decodeMatches(result, class)
}

func (s *Store) DropTable(ctx context.Context, table string) error {
	class := className(table)
	exists, err := s.client.Schema().ClassExistenceChecker().WithClassName(class).Do(ctx)
	if err != nil {
		return fmt.Errorf("check class %s: %w", class, err)
	}
	if !exists {
		return nil
	}
	if err := s.client.Schema().ClassDeleter().WithClassName(class).Do(ctx); err != nil {
		return fmt.Errorf("delete class %s: %w", class, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

// className maps a table to a Weaviate class. Classes must start with an
// upper-case letter.
func className(table string) string {
	if table == "" {
		return table
	}
	r := []rune(table)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func batchErrors(resp []models.ObjectsGetResponse) error {
	var msgs []string
	for _, r := range resp {
		if r.Result == nil || r.Result.Errors == nil {
			continue
		}
		for _, e := range r.Result.Errors.Error {
			if e != nil {
				msgs = append(msgs, e.Message)
			}
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("batch write: %s", strings.Join(msgs, "; "))
}

func graphQLErrors(result *models.GraphQLResponse) error {
	if result == nil {
		return errors.New("empty graphql response")
	}
	var msgs []string
	for _, e := range result.Errors {
		if e != nil {
			msgs = append(msgs, e.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return errors.New(strings.Join(msgs, "; "))
}

func decodeMatches(result *models.GraphQLResponse, class string) ([]knowledge.Match, error) {
	data, ok := result.Data["Get"]
	if !ok {
		return nil, errors.New("get key not found in result")
	}
	get, ok := data.(map[string]any)
	if !ok {
		return nil, errors.New("get key has unexpected type")
	}
	items, ok := get[class].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list of results", class)
	}

	out := make([]knowledge.Match, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("invalid element in result list")
		}
		var m knowledge.Match
		if m.Text, ok = obj["text"].(string); !ok {
			return nil, errors.New("result is missing text")
		}
		m.Page = asInt(obj["page"])
		m.Index = asInt(obj["idx"])
		if add, ok := obj["_additional"].(map[string]any); ok {
			m.ID, _ = add["id"].(string)
			if d, ok := add["distance"].(float64); ok {
				// Weaviate reports cosine distance.
				m.Score = float32(1 - d)
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
