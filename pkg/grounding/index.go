package grounding

import (
	"fmt"
	"math"
	"sort"

	"finaudit-be/pkg/embedding"
)

type indexEntry struct {
	fact   Fact
	vector []float32
}

// Index is an in-memory embedding-backed similarity structure over
// grounding facts. It holds only synthetic sentences and dies with the
// request that built it.
type Index struct {
	entries  []indexEntry
	embedder embedding.EmbeddingProvider
}

// Len returns the number of indexed facts.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Search embeds the query and returns the k nearest facts by cosine
// similarity.
func (ix *Index) Search(query string, k int) ([]Fact, error) {
	if k <= 0 || len(ix.entries) == 0 {
		return nil, nil
	}

	res, err := ix.embedder.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := res.Embedding.Values

	type scored struct {
		fact Fact
		sim  float64
	}
	ranked := make([]scored, 0, len(ix.entries))
	for _, entry := range ix.entries {
		ranked = append(ranked, scored{
			fact: entry.fact,
			sim:  cosineSimilarity(queryVec, entry.vector),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].sim > ranked[j].sim
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	facts := make([]Fact, k)
	for i := 0; i < k; i++ {
		facts[i] = ranked[i].fact
	}
	return facts, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
