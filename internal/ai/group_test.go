package ai

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/pitchcoach/internal/model"
)

type stubGenerator struct {
	answer string
	fail   error
	called bool
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.called = true
	if s.fail != nil {
		return "", s.fail
	}
	return s.answer, nil
}

type stubEmbedder struct {
	vector []float32
	fail   error
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([][]float32, 0, len(texts))
	for range texts {
		out = append(out, s.vector)
	}
	return out, nil
}

func (s *stubEmbedder) ModelName() string {
	return "stub"
}

// stubTranscriber reads the audio stream before deciding, mirroring how real
// providers upload the body first and fail after.
type stubTranscriber struct {
	segments  []model.TranscriptSegment
	fail      error
	skipRead  bool
	called    bool
	readBytes int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) ([]model.TranscriptSegment, error) {
	s.called = true
	if !s.skipRead {
		data, err := io.ReadAll(audio)
		if err != nil {
			return nil, err
		}
		s.readBytes = len(data)
	}
	if s.fail != nil {
		return nil, s.fail
	}
	return s.segments, nil
}

func TestGroupGeneratorFallsBack(t *testing.T) {
	first := &stubGenerator{fail: errors.New("quota exceeded")}
	second := &stubGenerator{answer: "fine"}
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "a", Generator: first},
		{Name: "b", Generator: second},
	})

	answer, err := group.Generate(context.Background(), "hi")
	require.NoError(t, err)
	require.Equal(t, "fine", answer)
	require.True(t, first.called)
}

func TestGroupGeneratorAllFail(t *testing.T) {
	lastErr := errors.New("also down")
	group := NewGroupGenerator([]GeneratorEntry{
		{Name: "a", Generator: &stubGenerator{fail: errors.New("down")}},
		{Name: "b", Generator: &stubGenerator{fail: lastErr}},
	})

	_, err := group.Generate(context.Background(), "hi")
	require.ErrorIs(t, err, lastErr)
}

func TestGroupEmbedderFallsBack(t *testing.T) {
	group := NewGroupEmbedder([]EmbedderEntry{
		{Name: "a", Embedder: &stubEmbedder{fail: errors.New("down")}},
		{Name: "b", Embedder: &stubEmbedder{vector: []float32{1, 2}}},
	})

	vectors, err := group.EmbedBatch(context.Background(), []string{"x", "y"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 2}, {1, 2}}, vectors)
	require.Equal(t, "a|b", group.ModelName())
}

func TestGroupTranscriberSkipsUnsupported(t *testing.T) {
	audio := []byte("sixteen-byte-wav")
	first := &stubTranscriber{skipRead: true, fail: ErrUnsupported}
	second := &stubTranscriber{segments: []model.TranscriptSegment{{Text: "hello", End: 1}}}
	group := NewGroupTranscriber([]TranscriberEntry{
		{Name: "a", Transcriber: first},
		{Name: "b", Transcriber: second},
	})

	segments, err := group.Transcribe(context.Background(), "call.mp3", bytes.NewReader(audio))
	require.NoError(t, err)
	require.Len(t, segments, 1)
	// The unsupported provider never touched the stream; the fallback saw it whole.
	require.Equal(t, len(audio), second.readBytes)
}

func TestGroupTranscriberStopsAfterConsumingFailure(t *testing.T) {
	upstream := errors.New("upstream 500")
	first := &stubTranscriber{fail: upstream}
	second := &stubTranscriber{segments: []model.TranscriptSegment{{Text: "ghost", End: 1}}}
	group := NewGroupTranscriber([]TranscriberEntry{
		{Name: "a", Transcriber: first},
		{Name: "b", Transcriber: second},
	})

	_, err := group.Transcribe(context.Background(), "call.mp3", bytes.NewReader([]byte("sixteen-byte-wav")))
	require.ErrorIs(t, err, upstream)
	// The first attempt drained the reader; a retry would transcribe silence.
	require.False(t, second.called)
}

func TestGroupTranscriberAllUnsupported(t *testing.T) {
	group := NewGroupTranscriber([]TranscriberEntry{
		{Name: "a", Transcriber: &stubTranscriber{skipRead: true, fail: ErrUnsupported}},
		{Name: "b", Transcriber: &stubTranscriber{skipRead: true, fail: ErrUnsupported}},
	})

	_, err := group.Transcribe(context.Background(), "call.mp3", bytes.NewReader(nil))
	require.ErrorIs(t, err, ErrUnsupported)
}
