package llm

import (
	"context"
)

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Embedder turns text into a fixed-length vector for similarity ranking.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// floatOption reads a float option, accepting both float64 and int
// literals since callers build options from untyped maps.
func floatOption(options map[string]interface{}, key string, fallback float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return fallback
}

func intOption(options map[string]interface{}, key string, fallback int) int {
	switch v := options[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return fallback
}

func stringOption(options map[string]interface{}, key, fallback string) string {
	if v, ok := options[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
