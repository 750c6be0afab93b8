package services

import (
	"errors"
	"fmt"
)

// Steps reported in provider errors.
const (
	StepBackgroundRemoval = "background_removal"
	StepTagging           = "tagging"
	StepSuggestion        = "suggestion"
	StepTryOn             = "try_on"
	StepWeather           = "weather"
)

// ProcessingError means the provider answered but the answer was unusable:
// missing or malformed output, a blocked prompt or a rejected request.
type ProcessingError struct {
	Step    string
	Message string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

func newProcessingError(step, format string, args ...any) *ProcessingError {
	return &ProcessingError{Step: step, Message: fmt.Sprintf(format, args...)}
}

// ProviderUnavailableError wraps transport failures, timeouts and 429/5xx answers.
type ProviderUnavailableError struct {
	Step string
	Err  error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("%s: provider unavailable: %v", e.Step, e.Err)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Err
}

func IsProviderUnavailable(err error) bool {
	var target *ProviderUnavailableError
	return errors.As(err, &target)
}

func IsProcessingError(err error) bool {
	var target *ProcessingError
	return errors.As(err, &target)
}

var ErrInvalidDataURI = errors.New("invalid data URI")
