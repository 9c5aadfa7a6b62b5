package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pitchcoach/internal/model"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/store"
)

func newSearchFixture(t *testing.T, embedder *fakeEmbedder) *SearchService {
	t.Helper()
	convStore, err := store.NewConversationStore(t.TempDir())
	require.NoError(t, err)
	staging, err := convStore.Stage("conv")
	require.NoError(t, err)
	require.NoError(t, staging.SaveTranscript([]model.TranscriptSegment{
		{Speaker: "Agent", Text: "good morning and welcome", Start: 0, End: 3},
		{Speaker: "Agent", Text: "our Pricing starts at ten dollars", Start: 3, End: 8},
		{Speaker: "Agent", Text: "any questions so far", Start: 8, End: 11},
	}))
	require.NoError(t, staging.SavePitch(model.PitchData{
		Steps:      []model.PitchStep{{Step: 1, Text: "step"}},
		Embeddings: [][]float32{{1, 0, 0}},
	}))
	require.NoError(t, staging.Publish())
	return NewSearchService(convStore, embedder, 0.6)
}

func TestSearchSemanticMatch(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"cost":                              {0, 1, 0},
		"good morning and welcome":          {1, 0, 0},
		"our Pricing starts at ten dollars": {0, 1, 0},
		"any questions so far":              {0, 0, 1},
	}}
	svc := newSearchFixture(t, embedder)
	results, err := svc.Search(context.Background(), "conv", "cost")
	require.NoError(t, err)
	require.Equal(t, []SearchResult{
		{Text: "our Pricing starts at ten dollars", Start: 3, End: 8},
	}, results)
}

func TestSearchLexicalMatchAlwaysIncluded(t *testing.T) {
	// Orthogonal vectors everywhere: similarity never crosses the threshold,
	// the substring hit must still be returned.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"pricing":                           {1, 0, 0},
		"good morning and welcome":          {0, 1, 0},
		"our Pricing starts at ten dollars": {0, 1, 0},
		"any questions so far":              {0, 1, 0},
	}}
	svc := newSearchFixture(t, embedder)
	results, err := svc.Search(context.Background(), "conv", "pricing")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "our Pricing starts at ten dollars", results[0].Text)
}

func TestSearchKeepsTranscriptOrder(t *testing.T) {
	// Everything matches; the output must follow transcript order, not score.
	embedder := &fakeEmbedder{vectors: map[string][]float32{}}
	svc := newSearchFixture(t, embedder)
	results, err := svc.Search(context.Background(), "conv", "ZZZ no lexical hit")
	require.NoError(t, err)
	// Default fake vector is identical for all texts: sim == 1 everywhere.
	require.Equal(t, []string{
		"good morning and welcome",
		"our Pricing starts at ten dollars",
		"any questions so far",
	}, []string{results[0].Text, results[1].Text, results[2].Text})
	require.LessOrEqual(t, results[0].Start, results[1].Start)
	require.LessOrEqual(t, results[1].Start, results[2].Start)
}

func TestSearchEmptyQuery(t *testing.T) {
	svc := newSearchFixture(t, &fakeEmbedder{})
	_, err := svc.Search(context.Background(), "conv", "   ")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestSearchUnknownConversation(t *testing.T) {
	svc := newSearchFixture(t, &fakeEmbedder{})
	_, err := svc.Search(context.Background(), "missing", "hello")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearchEmbeddingFailure(t *testing.T) {
	svc := newSearchFixture(t, &fakeEmbedder{fail: errors.New("boom")})
	_, err := svc.Search(context.Background(), "conv", "hello")
	require.ErrorIs(t, err, apperr.ErrEmbeddingService)
}
