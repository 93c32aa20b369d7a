package ports

import (
	"context"
	"errors"
)

// Remote text generation failure classes. Adapters wrap one of these so
// callers can use errors.Is without knowing the backend.
var (
	ErrRateLimited       = errors.New("generator rate limited")
	ErrTimeout           = errors.New("generator timed out")
	ErrMalformedResponse = errors.New("generator returned a malformed response")
)

// GenerateConfig carries the sampling parameters for one call.
type GenerateConfig struct {
	SystemPrompt string
	Temperature  float32
	MaxTokens    int32
}

// Generator produces short text from a prompt. Implementations must honor
// ctx cancellation; callers still bound the call themselves and discard
// late results.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg GenerateConfig) (string, error)

	// Name identifies the backend in logs and usage counters.
	Name() string
}
