package diarize

import (
	"fmt"

	"github.com/xxxsen/pitchcoach/internal/model"
)

// Mode names a speaker-labeling strategy for transcribed segments.
type Mode string

const (
	// ModeSingleSpeaker stamps every segment with one agent label. Real
	// diarization would need acoustic features the transcription response
	// does not carry; this is the baseline behavior.
	ModeSingleSpeaker Mode = "single-speaker"
)

const singleSpeakerLabel = "Agent"

// Apply fills the Speaker field of every segment in place according to mode.
func Apply(mode Mode, segments []model.TranscriptSegment) error {
	switch mode {
	case ModeSingleSpeaker:
		for i := range segments {
			segments[i].Speaker = singleSpeakerLabel
		}
		return nil
	default:
		return fmt.Errorf("unsupported diarization mode: %s", mode)
	}
}
