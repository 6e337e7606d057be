package ai

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse is returned when the reasoning service answered with no usable text.
	ErrEmptyResponse = errors.New("reasoning service returned an empty response")
	// ErrInvalidResponse is matched by every response shape violation.
	ErrInvalidResponse = errors.New("reasoning service returned an invalid response")
)

// Generator sends a prompt to a text-reasoning service and returns its raw answer.
// Implementations must be safe for concurrent use.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}
