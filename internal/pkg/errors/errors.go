package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrInvalid              = errors.New("invalid")
	ErrInternal             = errors.New("internal")
	ErrEmbeddingService     = errors.New("embedding service failed")
	ErrTranscriptionService = errors.New("transcription service failed")
	ErrGenerationService    = errors.New("generation service failed")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsServiceFailure reports whether err came from one of the external AI
// dependencies, so the caller can decide on retry.
func IsServiceFailure(err error) bool {
	return errors.Is(err, ErrEmbeddingService) ||
		errors.Is(err, ErrTranscriptionService) ||
		errors.Is(err, ErrGenerationService)
}
