package extract

import (
	"context"
	"fmt"
	"math"
	"sort"

	"proxyfacts/pkg/core/llm"
)

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-magnitude vectors score 0 rather than erroring;
// they simply never rank well.
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankByRelatedness embeds the query and every chunk, then returns the
// topN chunks sorted by descending cosine similarity, with their
// scores. The sort is stable: equal scores keep the chunks' document
// order, since position in the filing is a meaningful secondary signal.
func RankByRelatedness(ctx context.Context, embedder llm.Embedder, query string, chunks []string, topN int) ([]string, []float64, error) {
	queryVec, err := embedder.Embed(ctx, query)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		text  string
		score float64
	}
	ranked := make([]scored, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		ranked = append(ranked, scored{text: chunk, score: cosineSimilarity(queryVec, vec)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}

	texts := make([]string, len(ranked))
	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		texts[i] = r.text
		scores[i] = r.score
	}
	return texts, scores, nil
}
