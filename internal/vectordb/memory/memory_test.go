package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/studyscout/internal/knowledge"
)

func TestStore_EnsureTable(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.EnsureTable(ctx, "pdf_a", 3)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureTable(ctx, "pdf_a", 3)
	require.NoError(t, err)
	assert.False(t, created)

	_, err = s.EnsureTable(ctx, "pdf_a", 4)
	assert.Error(t, err)

	_, err = s.EnsureTable(ctx, "pdf_b", 0)
	assert.Error(t, err)
}

func TestStore_SearchOrdersBySimilarity(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.EnsureTable(ctx, "t", 2)
	require.NoError(t, err)

	require.NoError(t, s.Upsert(ctx, "t", []knowledge.Chunk{
		{ID: "x", Text: "x axis", Vector: []float32{1, 0}},
		{ID: "y", Text: "y axis", Vector: []float32{0, 1}},
		{ID: "xy", Text: "diagonal", Vector: []float32{1, 1}},
	}))

	got, err := s.Search(ctx, "t", []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)
	assert.Equal(t, "xy", got[1].ID)
	assert.Greater(t, got[0].Score, got[1].Score)
}

func TestStore_UpsertReplacesByID(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.EnsureTable(ctx, "t", 2)
	require.NoError(t, err)

	require.NoError(t, s.Upsert(ctx, "t", []knowledge.Chunk{{ID: "a", Text: "old", Vector: []float32{1, 0}}}))
	require.NoError(t, s.Upsert(ctx, "t", []knowledge.Chunk{{ID: "a", Text: "new", Vector: []float32{1, 0}}}))

	assert.Equal(t, 1, s.Len("t"))
	got, err := s.Search(ctx, "t", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, "new", got[0].Text)
}

func TestStore_Errors(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.Error(t, s.Upsert(ctx, "missing", nil))
	_, err := s.Search(ctx, "missing", []float32{1}, 1)
	assert.Error(t, err)

	_, err = s.EnsureTable(ctx, "t", 2)
	require.NoError(t, err)
	assert.Error(t, s.Upsert(ctx, "t", []knowledge.Chunk{{ID: "a", Vector: []float32{1}}}))
	_, err = s.Search(ctx, "t", []float32{1, 2, 3}, 1)
	assert.Error(t, err)
}

func TestStore_DropTable(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.EnsureTable(ctx, "t", 2)
	require.NoError(t, err)
	require.True(t, s.HasTable("t"))

	require.NoError(t, s.DropTable(ctx, "t"))
	assert.False(t, s.HasTable("t"))
	// Dropping again is fine.
	assert.NoError(t, s.DropTable(ctx, "t"))
}
