package grounding

import (
	"fmt"
	"sort"
	"strings"

	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/embedding"
	"finaudit-be/pkg/scoring"
)

// Fact source tags.
const (
	SourceScores     = "scores"
	SourceDimension  = "dimension"
	SourceRuleResult = "rule_result"
	SourceMetadata   = "metadata"
)

// Fact is a synthetic, redacted sentence derived from audit results. Facts
// never contain a raw data row.
type Fact struct {
	Text   string
	Source string
}

// Builder turns a completed audit into an ephemeral similarity index. The
// index lives for one request and is never persisted.
type Builder struct {
	embedder embedding.EmbeddingProvider
}

func NewBuilder(embedder embedding.EmbeddingProvider) *Builder {
	return &Builder{embedder: embedder}
}

// Facts derives the grounding sentences: one for the aggregate health
// score, one per dimension, one per rule result, and two metadata facts.
func (b *Builder) Facts(scores *scoring.Scores, metadata *dataset.Metadata) []Fact {
	var facts []Fact

	facts = append(facts, Fact{
		Text:   fmt.Sprintf("Overall Health Score: %v/100", scores.HealthScore),
		Source: SourceScores,
	})

	dims := make([]string, 0, len(scores.DimensionScores))
	for dim := range scores.DimensionScores {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		facts = append(facts, Fact{
			Text:   fmt.Sprintf("%s dimension score: %v/100", dim, scores.DimensionScores[dim]),
			Source: SourceDimension,
		})
	}

	ruleKeys := make([]string, 0, len(scores.RuleResults))
	for key := range scores.RuleResults {
		ruleKeys = append(ruleKeys, key)
	}
	sort.Strings(ruleKeys)
	for _, key := range ruleKeys {
		res := scores.RuleResults[key]
		status := "PASSED"
		if !res.Passed {
			status = "FAILED"
		}
		facts = append(facts, Fact{
			Text:   fmt.Sprintf("Rule '%s' %s. Score: %v. Details: %s", key, status, res.Score, res.Details),
			Source: SourceRuleResult,
		})
	}

	columns := metadata.ColumnNames()
	sort.Strings(columns)
	facts = append(facts,
		Fact{
			Text:   fmt.Sprintf("Dataset has %d rows and %d columns.", metadata.TotalRows, metadata.TotalColumns),
			Source: SourceMetadata,
		},
		Fact{
			Text:   fmt.Sprintf("Column names in the dataset: %s", strings.Join(columns, ", ")),
			Source: SourceMetadata,
		},
	)

	return facts
}

// Build embeds every fact and assembles the in-memory index.
func (b *Builder) Build(scores *scoring.Scores, metadata *dataset.Metadata) (*Index, error) {
	facts := b.Facts(scores, metadata)

	entries := make([]indexEntry, 0, len(facts))
	for _, fact := range facts {
		res, err := b.embedder.Generate(fact.Text, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return nil, fmt.Errorf("embed fact %q: %w", fact.Text, err)
		}
		entries = append(entries, indexEntry{
			fact:   fact,
			vector: res.Embedding.Values,
		})
	}

	return &Index{
		entries:  entries,
		embedder: b.embedder,
	}, nil
}
