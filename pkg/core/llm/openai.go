package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const openAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls the OpenAI chat completions API over raw HTTP.
type OpenAIProvider struct {
	Model   string // e.g. "gpt-4o-mini"
	BaseURL string // overridable for tests
}

var _ Provider = (*OpenAIProvider)(nil)

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if val, ok := options["api_key"].(string); ok && val != "" {
		apiKey = val
	}
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY_MISSING: Please set OPENAI_API_KEY env var")
	}

	model := p.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	model = stringOption(options, "model", model)

	baseURL := p.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}

	reqBody := openAIChatRequest{
		Model: model,
		Messages: []Message{
			{Content: systemPrompt, Role: "system"},
			{Content: prompt, Role: "user"},
		},
		Temperature: floatOption(options, "temperature", 1.0),
		TopP:        floatOption(options, "top_p", 1.0),
		MaxTokens:   intOption(options, "max_tokens", 4096),
		Stream:      false,
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/chat/completions", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("OPENAI_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("OPENAI_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("OPENAI_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != 200 {
		return "", fmt.Errorf("OPENAI_API_ERROR: status=%d found=%s", res.StatusCode, string(body))
	}

	var response openAIChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("OPENAI_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	return raw
}

// OpenAIEmbedder calls the OpenAI embeddings API.
type OpenAIEmbedder struct {
	Model   string // e.g. "text-embedding-3-small"
	BaseURL string
}

var _ Embedder = (*OpenAIEmbedder)(nil)

type openAIEmbedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY_MISSING: Please set OPENAI_API_KEY env var")
	}

	model := e.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	baseURL := e.BaseURL
	if baseURL == "" {
		baseURL = openAIBaseURL
	}

	jsonBytes, err := json.Marshal(openAIEmbedRequest{Model: model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("OPENAI_MARSHAL_ERROR: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", baseURL+"/embeddings", bytes.NewBuffer(jsonBytes))
	if err != nil {
		return nil, fmt.Errorf("OPENAI_REQ_CREATE_ERROR: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_API_CALL_ERROR: %v", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("OPENAI_READ_BODY_ERROR: %v", err)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("OPENAI_API_ERROR: status=%d found=%s", res.StatusCode, string(body))
	}

	var response openAIEmbedResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("OPENAI_UNMARSHAL_ERROR: %v", err)
	}
	if len(response.Data) == 0 {
		return nil, fmt.Errorf("OPENAI_NO_EMBEDDING: %s", string(body))
	}
	return response.Data[0].Embedding, nil
}
