package retrieve

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/boxcheck/internal/model"
)

// tableEmbedder returns fixed vectors per text
type tableEmbedder struct {
	vectors map[string][]float32
	calls   int
	err     error
}

func (e *tableEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vectors[t]
	}
	return out, nil
}

func facts(texts ...string) []model.FactStatement {
	out := make([]model.FactStatement, len(texts))
	for i, t := range texts {
		out[i] = model.FactStatement{Text: t, Category: model.FactCategoryGame}
	}
	return out
}

func newTable() *tableEmbedder {
	return &tableEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
		"same":  {2, 0},
		"close": {1, 1},
		"far":   {0, 1},
		"twin":  {3, 0},
		"zero":  {0, 0},
	}}
}

func TestRetrieve_RanksBySimilarity(t *testing.T) {
	r := New(newTable())

	got, err := r.Retrieve(context.Background(), "query", facts("far", "close", "same"), 2, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"same", "close"}, Texts(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.7071, got[1].Score, 1e-4)
	assert.Equal(t, 2, got[0].Index)
}

func TestRetrieve_TiesKeepInputOrder(t *testing.T) {
	r := New(newTable())

	got, err := r.Retrieve(context.Background(), "query", facts("far", "twin", "same"), 3, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"twin", "same", "far"}, Texts(got))
}

func TestRetrieve_Deterministic(t *testing.T) {
	r := New(newTable())
	in := facts("close", "far", "twin", "same", "zero")

	first, err := r.Retrieve(context.Background(), "query", in, 4, Options{})
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := r.Retrieve(context.Background(), "query", in, 4, Options{})
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestRetrieve_Counts(t *testing.T) {
	table := newTable()
	r := New(table)

	got, err := r.Retrieve(context.Background(), "query", facts("far", "close"), 10, Options{})
	require.NoError(t, err)
	assert.Len(t, got, 2, "fewer facts than requested returns all")

	got, err = r.Retrieve(context.Background(), "query", facts("far", "close"), 0, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)

	calls := table.calls
	got, err = r.Retrieve(context.Background(), "query", nil, 3, Options{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, calls, table.calls, "no embedding calls without facts")
}

func TestRetrieve_Exclude(t *testing.T) {
	table := newTable()
	table.vectors["close"] = []float32{1, 1}
	r := New(table)

	got, err := r.Retrieve(context.Background(), "close", facts("close", "far", "same"), 3, Options{Exclude: true})
	require.NoError(t, err)

	assert.NotContains(t, Texts(got), "close")
	assert.Len(t, got, 2)
}

func TestRetrieve_EmbedError(t *testing.T) {
	boom := errors.New("boom")
	r := New(&tableEmbedder{err: boom})

	_, err := r.Retrieve(context.Background(), "query", facts("far"), 1, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestCosineScores(t *testing.T) {
	scores, err := CosineScores([]float32{1, 0}, [][]float32{{0, 0}, {-1, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, -1}, scores)

	_, err = CosineScores([]float32{1, 0}, [][]float32{{1, 0, 0}})
	assert.Error(t, err)
}

func TestContextText(t *testing.T) {
	scored := []ScoredFact{
		{Fact: model.FactStatement{Text: "The Celtics won."}},
		{Fact: model.FactStatement{Text: "John Smith scored 20."}},
	}
	assert.Equal(t, "The Celtics won. John Smith scored 20.", ContextText(scored))
	assert.Equal(t, "", ContextText(nil))
}
