package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragkb/internal/domain"
	"ragkb/internal/vectorstore"
)

func src(id string) domain.KnowledgeSource {
	return domain.KnowledgeSource{
		ID:      id,
		Type:    domain.SourceStaticPage,
		Content: "content of " + id,
		Metadata: domain.Metadata{
			Title:    "title of " + id,
			Category: domain.CategoryTechnical,
		},
	}
}

func TestAddBatchLengthMismatch(t *testing.T) {
	s := NewStore()
	err := s.AddBatch(
		[]domain.KnowledgeSource{src("a"), src("b"), src("c")},
		[][]float64{{1, 0}, {0, 1}},
	)
	require.ErrorIs(t, err, vectorstore.ErrLengthMismatch)
	assert.Zero(t, s.Size(), "no partial insert on mismatch")
}

func TestAddBatchDimensionMismatchNoPartialInsert(t *testing.T) {
	s := NewStore()
	err := s.AddBatch(
		[]domain.KnowledgeSource{src("a"), src("b")},
		[][]float64{{1, 0}, {0, 1, 0}},
	)
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	assert.Zero(t, s.Size())
}

func TestAddDimensionMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(src("a"), []float64{1, 0, 0}))
	err := s.Add(src("b"), []float64{1, 0})
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
	assert.Equal(t, 1, s.Size())
}

func TestAddOverwritesDuplicateID(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(src("a"), []float64{1, 0}))
	updated := src("a")
	updated.Content = "updated"
	require.NoError(t, s.Add(updated, []float64{0, 1}))
	assert.Equal(t, 1, s.Size())

	hits, err := s.Search(context.Background(), []float64{0, 1}, 1, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated", hits[0].Content)
}

func TestSearchQueryDimensionMismatch(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(src("a"), []float64{1, 0}))
	_, err := s.Search(context.Background(), []float64{1, 0, 0}, 3, 0)
	require.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestSearchThresholdAndRanking(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddBatch(
		[]domain.KnowledgeSource{src("exact"), src("close"), src("orthogonal"), src("opposite")},
		[][]float64{
			{1, 0},
			{0.9, 0.4358898943540673}, // ~0.9 similarity to the query
			{0, 1},
			{-1, 0},
		},
	))
	ctx := context.Background()

	scored, err := s.SearchScored(ctx, []float64{1, 0}, 10, 0.7)
	require.NoError(t, err)
	require.Len(t, scored, 2)
	assert.Equal(t, "exact", scored[0].Source.ID)
	assert.Equal(t, "close", scored[1].Source.ID)
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9, "self similarity is 1")
	for _, sc := range scored {
		assert.GreaterOrEqual(t, sc.Score, 0.7, "no hit below minScore")
		assert.LessOrEqual(t, sc.Score, 1.0+1e-9)
		assert.GreaterOrEqual(t, sc.Score, -1.0-1e-9)
	}

	// Top-k: the best excluded entry never outranks a returned one.
	top, err := s.SearchScored(ctx, []float64{1, 0}, 1, 0.7)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "exact", top[0].Source.ID)
}

func TestSearchZeroVectorScoresZero(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(src("a"), []float64{1, 0}))
	hits, err := s.Search(context.Background(), []float64{0, 0}, 3, 0.1)
	require.NoError(t, err)
	assert.Empty(t, hits, "zero-magnitude query scores 0 against everything")
}

func TestSearchStableOrderOnTies(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddBatch(
		[]domain.KnowledgeSource{src("first"), src("second"), src("third")},
		[][]float64{{2, 0}, {1, 0}, {3, 0}}, // all cosine 1 to the query
	))
	hits, err := s.Search(context.Background(), []float64{1, 0}, 3, 0.9)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "first", hits[0].ID)
	assert.Equal(t, "second", hits[1].ID)
	assert.Equal(t, "third", hits[2].ID)
}

func TestClearResetsDimension(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(src("a"), []float64{1, 0}))
	s.Clear()
	assert.Zero(t, s.Size())
	// A new dimensionality is accepted after Clear.
	require.NoError(t, s.Add(src("b"), []float64{1, 0, 0}))
}
