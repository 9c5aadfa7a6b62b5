package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/ai"
	"github.com/xxxsen/pitchcoach/internal/chunker"
	"github.com/xxxsen/pitchcoach/internal/diarize"
	"github.com/xxxsen/pitchcoach/internal/extract"
	"github.com/xxxsen/pitchcoach/internal/filestore"
	"github.com/xxxsen/pitchcoach/internal/model"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/store"
)

type ConversationService struct {
	store        *store.ConversationStore
	blobs        filestore.Store
	transcriber  ai.ITranscriber
	embedder     ai.IEmbedder
	diarization  diarize.Mode
	maxStepWords int
	timeout      time.Duration
}

func NewConversationService(
	convStore *store.ConversationStore,
	blobs filestore.Store,
	transcriber ai.ITranscriber,
	embedder ai.IEmbedder,
	diarization diarize.Mode,
	maxStepWords int,
	timeout time.Duration,
) *ConversationService {
	return &ConversationService{
		store:        convStore,
		blobs:        blobs,
		transcriber:  transcriber,
		embedder:     embedder,
		diarization:  diarization,
		maxStepWords: maxStepWords,
		timeout:      timeout,
	}
}

type UploadInput struct {
	AudioName string
	Audio     []byte
	PitchName string
	Pitch     []byte
}

// Upload runs the full ingest pipeline: transcription, speaker labeling,
// pitch extraction, chunking and bulk embedding, then publishes everything
// atomically. On any failure nothing becomes readable.
func (s *ConversationService) Upload(ctx context.Context, in UploadInput) (string, error) {
	if in.AudioName == "" || len(in.Audio) == 0 {
		return "", fmt.Errorf("%w: audio file is required", apperr.ErrInvalid)
	}
	if in.PitchName == "" || len(in.Pitch) == 0 {
		return "", fmt.Errorf("%w: pitch document is required", apperr.ErrInvalid)
	}
	id := uuid.NewString()
	logger := logutil.GetLogger(ctx).With(zap.String("conversation_id", id))

	segments, err := s.transcribe(ctx, in.AudioName, in.Audio)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("%w: audio produced no speech segments", apperr.ErrInvalid)
	}
	if err := diarize.Apply(s.diarization, segments); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	logger.Info("audio transcribed", zap.Int("segments", len(segments)))

	pitchText, err := extract.Text(in.PitchName, in.Pitch)
	if err != nil {
		return "", fmt.Errorf("%w: unreadable pitch document: %v", apperr.ErrInvalid, err)
	}
	stepTexts := chunker.Chunk(pitchText, s.maxStepWords)
	if len(stepTexts) == 0 {
		return "", fmt.Errorf("%w: pitch document has no text", apperr.ErrInvalid)
	}
	embeddings, err := s.embedSteps(ctx, stepTexts)
	if err != nil {
		return "", err
	}
	steps := make([]model.PitchStep, 0, len(stepTexts))
	for i, text := range stepTexts {
		steps = append(steps, model.PitchStep{Step: i + 1, Text: text})
	}
	logger.Info("pitch processed", zap.Int("steps", len(steps)), zap.Int("dim", len(embeddings[0])))

	staging, err := s.store.Stage(id)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	defer staging.Discard()
	if err := staging.SaveRawFile(in.AudioName, in.Audio); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := staging.SaveRawFile(in.PitchName, in.Pitch); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := staging.SaveTranscript(segments); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := staging.SavePitch(model.PitchData{Steps: steps, Embeddings: embeddings}); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	if err := staging.Publish(); err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrInternal, err)
	}
	s.archiveBlobs(ctx, id, in)
	logger.Info("conversation published")
	return id, nil
}

func (s *ConversationService) transcribe(ctx context.Context, name string, audio []byte) ([]model.TranscriptSegment, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	segments, err := s.transcriber.Transcribe(ctx, name, bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrTranscriptionService, err)
	}
	return segments, nil
}

func (s *ConversationService) embedSteps(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrEmbeddingService, err)
	}
	return embeddings, nil
}

// archiveBlobs keeps a copy of the raw uploads in the blob store. The
// conversation is already published at this point; archive trouble is logged,
// not surfaced.
func (s *ConversationService) archiveBlobs(ctx context.Context, id string, in UploadInput) {
	if s.blobs == nil {
		return
	}
	logger := logutil.GetLogger(ctx).With(zap.String("conversation_id", id))
	for _, item := range []struct {
		name string
		data []byte
	}{
		{name: in.AudioName, data: in.Audio},
		{name: in.PitchName, data: in.Pitch},
	} {
		key := blobKey(id, item.name)
		reader := &byteReadSeekCloser{Reader: bytes.NewReader(item.data)}
		if err := s.blobs.Save(ctx, key, reader, int64(len(item.data))); err != nil {
			logger.Warn("raw upload archive failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func blobKey(id, name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, "/", "_")
	return id + "-" + base
}

type byteReadSeekCloser struct {
	*bytes.Reader
}

func (b *byteReadSeekCloser) Close() error {
	return nil
}

func (s *ConversationService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *ConversationService) GetTranscript(ctx context.Context, id string) ([]model.TranscriptSegment, error) {
	_ = ctx
	return s.store.GetTranscript(id)
}

func (s *ConversationService) GetPitchSteps(ctx context.Context, id string) ([]model.PitchStep, error) {
	_ = ctx
	pitch, err := s.store.GetPitch(id)
	if err != nil {
		return nil, err
	}
	return pitch.Steps, nil
}
