package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	sent  [][]string
}

func (c *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	c.calls++
	c.sent = append(c.sent, append([]string(nil), texts...))
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		out = append(out, []float32{float32(len(text)), 1})
	}
	return out, nil
}

func (c *countingEmbedder) ModelName() string {
	return "counting"
}

func TestLruEmbedderCachesRepeats(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Equal(t, 1, inner.calls)

	second, err := cached.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.calls)
}

func TestLruEmbedderOnlyFetchesMisses(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	_, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)

	vectors, err := cached.EmbedBatch(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	require.Equal(t, 2, inner.calls)
	require.Equal(t, []string{"beta", "gamma"}, inner.sent[1])
}

func TestLruEmbedderCachedVectorIsIsolated(t *testing.T) {
	inner := &countingEmbedder{}
	cached := WrapLruCacheToEmbedder(inner, 16, time.Minute)

	first, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	first[0][0] = -999

	second, err := cached.EmbedBatch(context.Background(), []string{"alpha"})
	require.NoError(t, err)
	require.Equal(t, float32(5), second[0][0])
}

func TestWrapWithoutCacheReturnsInner(t *testing.T) {
	inner := &countingEmbedder{}
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 0, time.Minute))
	require.Equal(t, inner, WrapLruCacheToEmbedder(inner, 16, 0))
}
