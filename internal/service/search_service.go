package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/ai"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/store"
)

type SearchResult struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// SearchService filters transcript segments by semantic similarity to a
// query, OR'd with a case-insensitive substring match: an exact lexical hit
// is always included no matter how the embeddings score it. Results keep
// transcript order.
type SearchService struct {
	store     *store.ConversationStore
	embedder  ai.IEmbedder
	threshold float64
}

func NewSearchService(convStore *store.ConversationStore, embedder ai.IEmbedder, threshold float64) *SearchService {
	return &SearchService{
		store:     convStore,
		embedder:  embedder,
		threshold: threshold,
	}
}

func (s *SearchService) Search(ctx context.Context, convID string, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrInvalid)
	}
	transcript, err := s.store.GetTranscript(convID)
	if err != nil {
		return nil, err
	}
	queryVecs, err := s.embedder.EmbedBatch(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
	}
	queryVec := queryVecs[0]
	loweredQuery := strings.ToLower(query)

	// One embed call per segment. Wasteful against a large transcript, but
	// the embed cache absorbs repeat queries on the same conversation.
	results := make([]SearchResult, 0)
	for _, seg := range transcript {
		segVecs, err := s.embedder.EmbedBatch(ctx, []string{seg.Text})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
		}
		sim := cosineSimilarity(queryVec, segVecs[0])
		lexical := strings.Contains(strings.ToLower(seg.Text), loweredQuery)
		if sim > s.threshold || lexical {
			results = append(results, SearchResult{Text: seg.Text, Start: seg.Start, End: seg.End})
		}
	}
	logutil.GetLogger(ctx).Debug("transcript searched",
		zap.String("conversation_id", convID),
		zap.Int("segments", len(transcript)),
		zap.Int("matches", len(results)),
	)
	return results, nil
}
