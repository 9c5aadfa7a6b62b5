package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xxxsen/pitchcoach/internal/model"
)

var (
	ErrUnavailable = errors.New("ai provider not configured")
	ErrUnsupported = errors.New("operation not supported by provider")
)

// IProvider is one external AI vendor exposing the three capabilities the
// service delegates: text generation, batch embedding and speech-to-text.
// A provider may implement a subset and return ErrUnsupported for the rest.
type IProvider interface {
	Name() string
	Generate(ctx context.Context, model string, prompt string) (string, error)
	EmbedBatch(ctx context.Context, model string, texts []string) ([][]float32, error)
	Transcribe(ctx context.Context, model string, filename string, audio io.Reader) ([]model.TranscriptSegment, error)
}

type IGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IEmbedder turns a non-empty ordered batch of strings into one vector per
// string, same order. On error no partial result is returned.
type IEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	ModelName() string
}

type ITranscriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) ([]model.TranscriptSegment, error)
}

type generator struct {
	provider IProvider
	model    string
}

func NewGenerator(p IProvider, model string) IGenerator {
	return &generator{provider: p, model: model}
}

func (g *generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.provider.Generate(ctx, g.model, prompt)
}

type embedder struct {
	provider IProvider
	model    string
}

func NewEmbedder(p IProvider, model string) IEmbedder {
	return &embedder{provider: p, model: model}
}

func (e *embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("embed batch is empty")
	}
	vectors, err := e.provider.EmbedBatch(ctx, e.model, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed batch size mismatch: sent %d, got %d", len(texts), len(vectors))
	}
	return vectors, nil
}

func (e *embedder) ModelName() string {
	return e.model
}

type transcriber struct {
	provider IProvider
	model    string
}

func NewTranscriber(p IProvider, model string) ITranscriber {
	return &transcriber{provider: p, model: model}
}

func (t *transcriber) Transcribe(ctx context.Context, filename string, audio io.Reader) ([]model.TranscriptSegment, error) {
	return t.provider.Transcribe(ctx, t.model, filename, audio)
}

type ProviderFactory func(args interface{}) (IProvider, error)

var registry = map[string]ProviderFactory{}

func Register(name string, factory ProviderFactory) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || factory == nil {
		return
	}
	registry[key] = factory
}

func NewProvider(name string, args interface{}) (IProvider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("ai.provider is required")
	}
	factory := registry[key]
	if factory == nil {
		return nil, fmt.Errorf("unsupported ai provider: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	if args == nil {
		return fmt.Errorf("ai provider config is required")
	}
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode ai provider config: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode ai provider config: %w", err)
	}
	return nil
}
