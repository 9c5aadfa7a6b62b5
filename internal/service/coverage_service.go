package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/ai"
	"github.com/xxxsen/pitchcoach/internal/model"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/store"
)

// NextAllCovered is returned as the next-step recommendation once every
// pitch step has been said.
const NextAllCovered = "All steps covered!"

type CoverageResult struct {
	Said   []string `json:"said"`
	Missed []string `json:"missed"`
	Next   string   `json:"next"`
}

// CoverageService decides which pitch steps the conversation has covered up
// to a point in time. Pure read: every call re-derives the result from the
// persisted transcript and pitch data (the embed cache may elide the external
// call, never the computation).
type CoverageService struct {
	store         *store.ConversationStore
	embedder      ai.IEmbedder
	saidThreshold float64
}

func NewCoverageService(convStore *store.ConversationStore, embedder ai.IEmbedder, saidThreshold float64) *CoverageService {
	return &CoverageService{
		store:         convStore,
		embedder:      embedder,
		saidThreshold: saidThreshold,
	}
}

// Coverage classifies every pitch step as said or missed against the speech
// up to currentTime (nil means the whole transcript) and recommends the first
// missed step by pitch order, not by similarity rank.
func (s *CoverageService) Coverage(ctx context.Context, convID string, currentTime *float64) (*CoverageResult, error) {
	transcript, err := s.store.GetTranscript(convID)
	if err != nil {
		return nil, err
	}
	pitch, err := s.store.GetPitch(convID)
	if err != nil {
		return nil, err
	}

	prefix := transcriptPrefix(transcript, currentTime)
	spoken, err := s.spokenVector(ctx, prefix, pitch)
	if err != nil {
		return nil, err
	}

	result := &CoverageResult{Said: []string{}, Missed: []string{}}
	for i, step := range pitch.Steps {
		sim := cosineSimilarity(spoken, pitch.Embeddings[i])
		if sim > s.saidThreshold {
			result.Said = append(result.Said, step.Text)
		} else {
			result.Missed = append(result.Missed, step.Text)
		}
	}
	if len(result.Missed) > 0 {
		result.Next = result.Missed[0]
	} else {
		result.Next = NextAllCovered
	}
	logutil.GetLogger(ctx).Debug("coverage computed",
		zap.String("conversation_id", convID),
		zap.Int("prefix_segments", len(prefix)),
		zap.Int("said", len(result.Said)),
		zap.Int("missed", len(result.Missed)),
	)
	return result, nil
}

// transcriptPrefix keeps the segments fully finished by currentTime.
func transcriptPrefix(transcript []model.TranscriptSegment, currentTime *float64) []model.TranscriptSegment {
	if currentTime == nil {
		return transcript
	}
	var prefix []model.TranscriptSegment
	for _, seg := range transcript {
		if seg.End <= *currentTime {
			prefix = append(prefix, seg)
		}
	}
	return prefix
}

// spokenVector embeds the space-joined prefix text as one vector. An empty
// prefix maps to the zero vector of the pitch embedding dimension, which
// cosine-scores 0 against every step.
func (s *CoverageService) spokenVector(ctx context.Context, prefix []model.TranscriptSegment, pitch *model.PitchData) ([]float32, error) {
	dim := 0
	if len(pitch.Embeddings) > 0 {
		dim = len(pitch.Embeddings[0])
	}
	if len(prefix) == 0 {
		return make([]float32, dim), nil
	}
	texts := make([]string, 0, len(prefix))
	for _, seg := range prefix {
		texts = append(texts, seg.Text)
	}
	vectors, err := s.embedder.EmbedBatch(ctx, []string{strings.Join(texts, " ")})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
	}
	spoken := vectors[0]
	if dim > 0 && len(spoken) != dim {
		return nil, fmt.Errorf("%w: embedding dimension mismatch: spoken %d, pitch %d",
			apperr.ErrInternal, len(spoken), dim)
	}
	return spoken, nil
}
