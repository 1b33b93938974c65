package services

import (
	"errors"
	"fmt"
	"strings"

	"model-eval/models"
)

var (
	ErrPromptNotFound        = errors.New("prompt not found")
	ErrEvaluationNotFound    = errors.New("evaluation not found")
	ErrNoEvaluations         = errors.New("no evaluations found for this prompt")
	ErrInvalidProvider       = errors.New("invalid provider")
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// ValidationError is returned for malformed caller input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// AllProvidersFailedError is returned by a multi-provider run in which no
// configuration produced an evaluation. Nothing was persisted.
type AllProvidersFailedError struct {
	Failed []models.FailedEvaluation
}

func (e *AllProvidersFailedError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", f.Provider, f.Model, f.Error))
	}
	return "all evaluations failed: " + strings.Join(parts, "; ")
}

// ImportError wraps a failure to fetch or extract a page for prompt import.
type ImportError struct {
	URL string
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import %s: %v", e.URL, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
