package llm

import "strings"

// providerFactories maps config names to provider constructors. An
// unknown or empty name falls back to OpenAI, the config default.
var providerFactories = map[string]func(model string) Provider{
	"openai": func(model string) Provider { return &OpenAIProvider{Model: model} },
	"gemini": func(model string) Provider { return &GeminiProvider{Model: model} },
}

var embedderFactories = map[string]func(model string) Embedder{
	"openai": func(model string) Embedder { return &OpenAIEmbedder{Model: model} },
	"gemini": func(model string) Embedder { return &GeminiEmbedder{Model: model} },
}

// NewProvider returns the chat provider registered under name,
// configured for the given model.
func NewProvider(name, model string) Provider {
	if factory, ok := providerFactories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return factory(model)
	}
	return providerFactories["openai"](model)
}

// NewEmbedder returns the embedding client registered under name.
func NewEmbedder(name, model string) Embedder {
	if factory, ok := embedderFactories[strings.ToLower(strings.TrimSpace(name))]; ok {
		return factory(model)
	}
	return embedderFactories["openai"](model)
}
