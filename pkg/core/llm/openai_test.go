package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIProvider_GenerateResponse(t *testing.T) {
	var got openAIChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "{\"ceo_name\": \"Brian Roberts\"}"}}]}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	provider := &OpenAIProvider{BaseURL: server.URL}

	out, err := provider.GenerateResponse(context.Background(), "extract facts", "you are terse", map[string]interface{}{
		"temperature": 0.2,
		"top_p":       0.2,
		"max_tokens":  300,
	})
	if err != nil {
		t.Fatalf("GenerateResponse: %v", err)
	}
	if out != `{"ceo_name": "Brian Roberts"}` {
		t.Errorf("unexpected content %q", out)
	}

	if got.Temperature != 0.2 || got.TopP != 0.2 || got.MaxTokens != 300 {
		t.Errorf("sampling options not forwarded: %+v", got)
	}
	if got.Model != "gpt-4o-mini" {
		t.Errorf("default model not applied, got %q", got.Model)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("message roles wrong: %+v", got.Messages)
	}
}

func TestOpenAIProvider_Non200IsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	provider := &OpenAIProvider{BaseURL: server.URL}
	if _, err := provider.GenerateResponse(context.Background(), "p", "s", nil); err == nil {
		t.Fatal("expected error on 429 response")
	}
}

func TestOpenAIEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": [{"embedding": [0.1, 0.2, 0.3]}]}`))
	}))
	defer server.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	embedder := &OpenAIEmbedder{BaseURL: server.URL}

	vec, err := embedder.Embed(context.Background(), "annual bonus metrics")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[1] != 0.2 {
		t.Errorf("unexpected vector %v", vec)
	}
}
