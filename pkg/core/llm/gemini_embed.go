package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiEmbedder produces embeddings through the Gemini embedding
// models.
type GeminiEmbedder struct {
	Model string // e.g. "text-embedding-004"
}

var _ Embedder = (*GeminiEmbedder)(nil)

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	defer client.Close()

	model := e.Model
	if model == "" {
		model = "text-embedding-004"
	}

	res, err := client.EmbeddingModel(model).EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("gemini embedding failed: %w", err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("gemini embedding response carried no vector")
	}

	vector := make([]float64, len(res.Embedding.Values))
	for i, v := range res.Embedding.Values {
		vector[i] = float64(v)
	}
	return vector, nil
}
