package grounding

import (
	"strings"
	"testing"

	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/embedding"
	"finaudit-be/pkg/rules"
	"finaudit-be/pkg/scoring"
)

// stubEmbedder maps known texts to fixed vectors so similarity ordering is
// fully controlled by the test.
type stubEmbedder struct {
	vectors   map[string][]float32
	fallback  []float32
	taskTypes []string
}

func (s *stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	s.taskTypes = append(s.taskTypes, taskType)
	vec, ok := s.vectors[text]
	if !ok {
		vec = s.fallback
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: vec},
	}, nil
}

func testInputs() (*scoring.Scores, *dataset.Metadata) {
	scores := &scoring.Scores{
		HealthScore:  72,
		OverallScore: 71.8,
		DimensionScores: map[string]float64{
			"completeness": 80,
			"compliance":   50,
		},
		RuleResults: map[string]rules.Result{
			"completeness_missing_values": {Passed: false, Score: 80, Weight: 2.0, Details: "2 missing values"},
			"compliance_pii_exposure":     {Passed: false, Score: 50, Weight: 3.0, Details: "PII column found"},
			"volume_row_count":            {Passed: true, Score: 100, Weight: 0.5, Details: "42 rows"},
		},
	}
	metadata := &dataset.Metadata{
		Columns: map[string]dataset.ColumnProfile{
			"amount":     {DType: "float"},
			"ssn_number": {DType: "string"},
		},
		TotalRows:    42,
		TotalColumns: 2,
	}
	return scores, metadata
}

func TestFactsShapeAndSources(t *testing.T) {
	b := NewBuilder(&stubEmbedder{fallback: []float32{1, 0}})
	scores, metadata := testInputs()

	facts := b.Facts(scores, metadata)

	// 1 health + 2 dimensions + 3 rules + 2 metadata
	if len(facts) != 8 {
		t.Fatalf("len(facts) = %d, want 8", len(facts))
	}

	counts := map[string]int{}
	for _, f := range facts {
		counts[f.Source]++
	}
	want := map[string]int{
		SourceScores:     1,
		SourceDimension:  2,
		SourceRuleResult: 3,
		SourceMetadata:   2,
	}
	for source, n := range want {
		if counts[source] != n {
			t.Errorf("source %q count = %d, want %d", source, counts[source], n)
		}
	}

	if facts[0].Text != "Overall Health Score: 72/100" {
		t.Errorf("health fact = %q", facts[0].Text)
	}
}

func TestFactsContainNoRawValues(t *testing.T) {
	b := NewBuilder(&stubEmbedder{fallback: []float32{1, 0}})
	scores, metadata := testInputs()

	for _, f := range b.Facts(scores, metadata) {
		// Column names and summary statistics are allowed; a raw SSN-style
		// value never appears because facts are built from metadata only.
		if strings.Contains(f.Text, "123-45-6789") {
			t.Errorf("fact leaks raw value: %q", f.Text)
		}
	}
}

func TestBuildUsesDocumentTaskType(t *testing.T) {
	emb := &stubEmbedder{fallback: []float32{1, 0}}
	b := NewBuilder(emb)
	scores, metadata := testInputs()

	index, err := b.Build(scores, metadata)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if index.Len() != 8 {
		t.Errorf("index.Len() = %d, want 8", index.Len())
	}
	for _, taskType := range emb.taskTypes {
		if taskType != "RETRIEVAL_DOCUMENT" {
			t.Errorf("taskType = %q, want RETRIEVAL_DOCUMENT", taskType)
		}
	}
}

func TestSearchRanksBySimilarity(t *testing.T) {
	scores, metadata := testInputs()

	emb := &stubEmbedder{
		vectors: map[string][]float32{
			"Overall Health Score: 72/100": {1, 0},
			"what is the health score":     {0.9, 0.1},
		},
		fallback: []float32{0, 1},
	}
	index, err := NewBuilder(emb).Build(scores, metadata)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	results, err := index.Search("what is the health score", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if results[0].Text != "Overall Health Score: 72/100" {
		t.Errorf("top result = %q, want the health fact", results[0].Text)
	}
	if results[0].Source != SourceScores {
		t.Errorf("top result source = %q", results[0].Source)
	}
}

func TestSearchKLargerThanIndex(t *testing.T) {
	emb := &stubEmbedder{fallback: []float32{1, 0}}
	scores, metadata := testInputs()
	index, err := NewBuilder(emb).Build(scores, metadata)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	results, err := index.Search("anything", 50)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != index.Len() {
		t.Errorf("len(results) = %d, want %d", len(results), index.Len())
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
