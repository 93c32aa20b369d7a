package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/corey/tabwarden/internal/adapters/gemini"
	"github.com/corey/tabwarden/internal/adapters/openai"
	"github.com/corey/tabwarden/internal/config"
	"github.com/corey/tabwarden/internal/ports"
)

// newGenerator builds the configured remote generator. A missing key or a
// client that cannot be created leaves the pipeline on local templates.
func newGenerator(ctx context.Context, c config.GeneratorConfig, log *zap.Logger) ports.Generator {
	var (
		gen ports.Generator
		err error
	)
	switch c.Provider {
	case config.ProviderGemini:
		gen, err = gemini.New(ctx, gemini.Config{APIKey: c.APIKey, Model: c.Model, BaseURL: c.BaseURL})
	case config.ProviderOpenAI:
		gen, err = openai.New(openai.Config{APIKey: c.APIKey, Model: c.Model, BaseURL: c.BaseURL})
	default:
		return nil
	}
	if err != nil {
		log.Warn("remote generator unavailable, using local templates",
			zap.String("provider", c.Provider),
			zap.Error(err))
		return nil
	}
	return gen
}
