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

func newAssistantFixture(t *testing.T, generator *fakeGenerator, maxInputChars int) *AssistantService {
	t.Helper()
	convStore, err := store.NewConversationStore(t.TempDir())
	require.NoError(t, err)
	staging, err := convStore.Stage("conv")
	require.NoError(t, err)
	require.NoError(t, staging.SaveTranscript([]model.TranscriptSegment{
		{Speaker: "Agent", Text: "good morning", Start: 0, End: 2},
		{Speaker: "Agent", Text: "the product saves you time", Start: 2, End: 6},
	}))
	require.NoError(t, staging.SavePitch(model.PitchData{
		Steps:      []model.PitchStep{{Step: 1, Text: "Introduce yourself."}, {Step: 2, Text: "Explain the product."}},
		Embeddings: [][]float32{{1, 0}, {0, 1}},
	}))
	require.NoError(t, staging.Publish())
	return NewAssistantService(convStore, generator, maxInputChars, 0)
}

func TestAskBuildsGroundedPrompt(t *testing.T) {
	generator := &fakeGenerator{answer: "they asked about pricing"}
	svc := newAssistantFixture(t, generator, 0)

	answer, err := svc.Ask(context.Background(), "conv", "what did the customer ask?")
	require.NoError(t, err)
	require.Equal(t, "they asked about pricing", answer)
	require.Contains(t, generator.prompt, "Agent: good morning")
	require.Contains(t, generator.prompt, "Agent: the product saves you time")
	require.Contains(t, generator.prompt, "Step 1: Introduce yourself.")
	require.Contains(t, generator.prompt, "Step 2: Explain the product.")
	require.Contains(t, generator.prompt, "what did the customer ask?")
}

func TestAskTrimsOldestSpeechKeepsSteps(t *testing.T) {
	generator := &fakeGenerator{answer: "ok"}
	svc := newAssistantFixture(t, generator, 40)

	_, err := svc.Ask(context.Background(), "conv", "anything?")
	require.NoError(t, err)
	// Budget fits only the newest line; oldest speech goes first.
	require.NotContains(t, generator.prompt, "Agent: good morning")
	require.Contains(t, generator.prompt, "Agent: the product saves you time")
	// The step list never gets trimmed.
	require.Contains(t, generator.prompt, "Step 1: Introduce yourself.")
	require.Contains(t, generator.prompt, "Step 2: Explain the product.")
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newAssistantFixture(t, &fakeGenerator{answer: "x"}, 0)
	_, err := svc.Ask(context.Background(), "conv", " \t ")
	require.ErrorIs(t, err, apperr.ErrInvalid)
}

func TestAskUnknownConversation(t *testing.T) {
	svc := newAssistantFixture(t, &fakeGenerator{answer: "x"}, 0)
	_, err := svc.Ask(context.Background(), "missing", "hello")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAskGenerationFailure(t *testing.T) {
	svc := newAssistantFixture(t, &fakeGenerator{fail: errors.New("model overloaded")}, 0)
	_, err := svc.Ask(context.Background(), "conv", "hello")
	require.ErrorIs(t, err, apperr.ErrGenerationService)
}

func TestAskEmptyAnswerIsFailure(t *testing.T) {
	svc := newAssistantFixture(t, &fakeGenerator{answer: "  "}, 0)
	_, err := svc.Ask(context.Background(), "conv", "hello")
	require.ErrorIs(t, err, apperr.ErrGenerationService)
}
