package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model string // e.g. "gemini-2.0-flash-exp"
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request to the Gemini API using the official GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := p.Model
	if model == "" {
		model = "gemini-2.0-flash-exp"
	}
	model = stringOption(options, "model", model)

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(floatOption(options, "temperature", 0.1))),
	}
	if _, ok := options["top_p"]; ok {
		config.TopP = genai.Ptr(float32(floatOption(options, "top_p", 1.0)))
	}
	if maxTokens := intOption(options, "max_tokens", 0); maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	// JSON mode: explicit option first, otherwise a heuristic on the
	// prompt text.
	if val, ok := options["response_format"].(map[string]interface{}); ok {
		if val["type"] == "json_object" {
			config.ResponseMIMEType = "application/json"
		}
	} else if strings.Contains(strings.ToLower(systemPrompt), "json") || strings.Contains(strings.ToLower(prompt), "json") {
		config.ResponseMIMEType = "application/json"
	}

	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}

	result, err := client.Models.GenerateContent(
		ctx,
		model,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	return result.Text(), nil
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}
