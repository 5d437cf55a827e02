package extract

import (
	"context"
	"fmt"
	"testing"
)

// mapEmbedder returns canned vectors keyed by input text.
type mapEmbedder struct {
	vectors map[string][]float64
}

func (m *mapEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec, ok := m.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no canned vector for %q", text)
	}
	return vec, nil
}

func TestRankByRelatedness_OrderAndTies(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float64{
		"bonus targets": {1, 0},
		"chunk-a":       {1, 0},     // similarity 1.0
		"chunk-b":       {0, 1},     // similarity 0.0
		"chunk-c":       {2, 0},     // similarity 1.0, ties with chunk-a
		"chunk-d":       {0.5, 0.5}, // similarity ~0.707
	}}

	chunks := []string{"chunk-a", "chunk-b", "chunk-c", "chunk-d"}
	ranked, scores, err := RankByRelatedness(context.Background(), embedder, "bonus targets", chunks, 3)
	if err != nil {
		t.Fatalf("RankByRelatedness: %v", err)
	}

	// Ties keep original chunk order: a before c despite equal scores.
	want := []string{"chunk-a", "chunk-c", "chunk-d"}
	for i := range want {
		if ranked[i] != want[i] {
			t.Fatalf("rank %d = %q, want %q (full order %v)", i, ranked[i], want[i], ranked)
		}
	}
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[i-1] {
			t.Errorf("scores not descending: %v", scores)
		}
	}
}

func TestRankByRelatedness_TopNLargerThanChunks(t *testing.T) {
	embedder := &mapEmbedder{vectors: map[string][]float64{
		"q":  {1, 0},
		"c1": {1, 0},
	}}
	ranked, _, err := RankByRelatedness(context.Background(), embedder, "q", []string{"c1"}, 100)
	if err != nil || len(ranked) != 1 {
		t.Fatalf("ranked = %v, err = %v", ranked, err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		a, b []float64
		want float64
	}{
		{[]float64{1, 0}, []float64{1, 0}, 1},
		{[]float64{1, 0}, []float64{0, 1}, 0},
		{[]float64{1, 0}, []float64{-1, 0}, -1},
		{[]float64{1, 0}, []float64{}, 0},
		{[]float64{0, 0}, []float64{1, 0}, 0},
	}
	for _, tc := range tests {
		got := cosineSimilarity(tc.a, tc.b)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("cosineSimilarity(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}
