package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/pitchcoach/internal/ai"
	"github.com/xxxsen/pitchcoach/internal/model"
	apperr "github.com/xxxsen/pitchcoach/internal/pkg/errors"
	"github.com/xxxsen/pitchcoach/internal/store"
)

// AssistantService answers free-form questions about a call, grounding the
// generative model on the transcript and the pitch steps.
type AssistantService struct {
	store         *store.ConversationStore
	generator     ai.IGenerator
	maxInputChars int
	timeout       time.Duration
}

func NewAssistantService(convStore *store.ConversationStore, generator ai.IGenerator, maxInputChars int, timeout time.Duration) *AssistantService {
	return &AssistantService{
		store:         convStore,
		generator:     generator,
		maxInputChars: maxInputChars,
		timeout:       timeout,
	}
}

func (s *AssistantService) Ask(ctx context.Context, convID string, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: question is required", apperr.ErrInvalid)
	}
	transcript, err := s.store.GetTranscript(convID)
	if err != nil {
		return "", err
	}
	pitch, err := s.store.GetPitch(convID)
	if err != nil {
		return "", err
	}
	prompt := s.buildPrompt(ctx, transcript, pitch.Steps, question)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrGenerationService, err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty answer", apperr.ErrGenerationService)
	}
	return answer, nil
}

// buildPrompt assembles transcript lines and the numbered step list. The
// transcript portion is capped at maxInputChars with the oldest speech
// trimmed first; the step list is always kept whole since it is small and
// every answer should see the full pitch.
func (s *AssistantService) buildPrompt(ctx context.Context, transcript []model.TranscriptSegment, steps []model.PitchStep, question string) string {
	lines := make([]string, 0, len(transcript))
	for _, seg := range transcript {
		lines = append(lines, fmt.Sprintf("%s: %s", seg.Speaker, seg.Text))
	}
	callContext := strings.Join(lines, "\n")
	if s.maxInputChars > 0 && len(callContext) > s.maxInputChars {
		trimmed := callContext[len(callContext)-s.maxInputChars:]
		if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
			trimmed = trimmed[idx+1:]
		}
		logutil.GetLogger(ctx).Info("transcript trimmed for prompt",
			zap.Int("original_chars", len(callContext)),
			zap.Int("kept_chars", len(trimmed)),
		)
		callContext = trimmed
	}

	stepLines := make([]string, 0, len(steps))
	for _, step := range steps {
		stepLines = append(stepLines, fmt.Sprintf("Step %d: %s", step.Step, step.Text))
	}

	return fmt.Sprintf(`You are a helpful sales call assistant. Here is the transcript:
%s

Here are the pitch steps:
%s

User question: %s
Answer in detail, referencing the transcript and pitch steps as needed.`,
		callContext, strings.Join(stepLines, "\n"), question)
}
