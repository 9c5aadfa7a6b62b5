package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xxxsen/pitchcoach/internal/model"
)

// fakeEmbedder returns fixed vectors keyed by input text, so similarity
// outcomes are fully scripted. Unknown texts fall back to a constant
// off-axis vector.
type fakeEmbedder struct {
	vectors map[string][]float32
	fail    error
	calls   int
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.fail != nil {
		return nil, f.fail
	}
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			out = append(out, vec)
			continue
		}
		out = append(out, []float32{0.5, 0.5, 0.5})
	}
	return out, nil
}

func (f *fakeEmbedder) ModelName() string {
	return "fake-embed"
}

type fakeGenerator struct {
	answer string
	fail   error
	prompt string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.fail != nil {
		return "", f.fail
	}
	return f.answer, nil
}

type fakeTranscriber struct {
	segments []model.TranscriptSegment
	fail     error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) ([]model.TranscriptSegment, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	if _, err := io.ReadAll(audio); err != nil {
		return nil, fmt.Errorf("drain audio: %w", err)
	}
	return f.segments, nil
}
