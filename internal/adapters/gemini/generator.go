// Package gemini implements ports.Generator on Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/corey/tabwarden/internal/ports"
)

// DefaultModel is used when the config names none.
const DefaultModel = "gemini-2.5-flash"

// generateFunc matches genai's Models.GenerateContent.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Generator calls Gemini's generateContent endpoint.
type Generator struct {
	model    string
	generate generateFunc
}

// Config holds connection parameters.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // optional endpoint override
}

// New creates a Gemini generator.
func New(ctx context.Context, cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newWithFunc(cfg.Model, client.Models.GenerateContent), nil
}

func newWithFunc(model string, fn generateFunc) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{model: model, generate: fn}
}

// Name returns the backend identifier.
func (g *Generator) Name() string {
	return "gemini:" + g.model
}

// Generate sends one prompt and returns the trimmed text of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt string, cfg ports.GenerateConfig) (string, error) {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		MaxOutputTokens: cfg.MaxTokens,
	}
	if cfg.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(cfg.SystemPrompt, genai.RoleUser)
	}

	resp, err := g.generate(ctx, g.model, genai.Text(prompt), gc)
	if err != nil {
		return "", classify(ctx, err)
	}
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", ports.ErrMalformedResponse)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: no text in response", ports.ErrMalformedResponse)
	}
	return text, nil
}

// classify maps SDK and transport failures onto the port's error classes.
func classify(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ports.ErrTimeout, err)
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", ports.ErrRateLimited, err)
	}
	return fmt.Errorf("gemini generate: %w", err)
}
