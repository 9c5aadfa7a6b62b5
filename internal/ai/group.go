package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/model"
)

type GeneratorEntry struct {
	Name      string
	Generator IGenerator
}

type EmbedderEntry struct {
	Name     string
	Embedder IEmbedder
}

type TranscriberEntry struct {
	Name        string
	Transcriber ITranscriber
}

type groupGenerator struct {
	items []GeneratorEntry
}

// NewGroupGenerator chains generators; the first that succeeds wins.
func NewGroupGenerator(items []GeneratorEntry) IGenerator {
	if len(items) == 0 {
		return nil
	}
	return &groupGenerator{items: items}
}

func (g *groupGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Generator == nil {
			continue
		}
		res, err := item.Generator.Generate(ctx, prompt)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("generator failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return "", fmt.Errorf("generator not configured")
	}
	return "", lastErr
}

type groupEmbedder struct {
	items []EmbedderEntry
}

func NewGroupEmbedder(items []EmbedderEntry) IEmbedder {
	if len(items) == 0 {
		return nil
	}
	return &groupEmbedder{items: items}
}

func (g *groupEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Embedder == nil {
			continue
		}
		res, err := item.Embedder.EmbedBatch(ctx, texts)
		if err == nil {
			return res, nil
		}
		lastErr = err
		logutil.GetLogger(ctx).Warn("embedder failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
	}
	if lastErr == nil {
		return nil, fmt.Errorf("embedder not configured")
	}
	return nil, lastErr
}

func (g *groupEmbedder) ModelName() string {
	names := make([]string, 0, len(g.items))
	for _, item := range g.items {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
	}
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "|")
}

type groupTranscriber struct {
	items []TranscriberEntry
}

func NewGroupTranscriber(items []TranscriberEntry) ITranscriber {
	if len(items) == 0 {
		return nil
	}
	return &groupTranscriber{items: items}
}

// Transcribe consumes the audio reader, so handing the same reader to the
// next entry is only safe when a provider declares the capability unsupported
// before reading. Any other failure may have drained the audio and is
// returned as-is rather than letting a fallback transcribe an empty stream.
func (g *groupTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) ([]model.TranscriptSegment, error) {
	var lastErr error
	for i, item := range g.items {
		if item.Transcriber == nil {
			continue
		}
		res, err := item.Transcriber.Transcribe(ctx, filename, audio)
		if err == nil {
			return res, nil
		}
		if errors.Is(err, ErrUnsupported) {
			lastErr = err
			continue
		}
		logutil.GetLogger(ctx).Warn("transcriber failed", zap.Int("index", i), zap.String("name", item.Name), zap.Error(err))
		return nil, err
	}
	if lastErr == nil {
		return nil, fmt.Errorf("transcriber not configured")
	}
	return nil, lastErr
}
