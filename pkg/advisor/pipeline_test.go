package advisor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"finaudit-be/pkg/advisor/gateway"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/llm"
	"finaudit-be/pkg/rules"
	"finaudit-be/pkg/scoring"
)

type stubLLM struct {
	reply        string
	err          error
	lastMessages []llm.Message
}

func (s *stubLLM) Chat(_ context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	s.lastMessages = history
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func metadataWithColumns(names ...string) *dataset.Metadata {
	cols := make(map[string]dataset.ColumnProfile, len(names))
	for _, n := range names {
		cols[n] = dataset.ColumnProfile{DType: "string"}
	}
	return &dataset.Metadata{
		Columns:      cols,
		TotalRows:    10,
		TotalColumns: len(names),
	}
}

func testScores() *scoring.Scores {
	return &scoring.Scores{
		HealthScore:  60,
		OverallScore: 60.4,
		DimensionScores: map[string]float64{
			"completeness": 100,
			"accuracy":     40,
		},
		RuleResults: map[string]rules.Result{
			"completeness_missing_values": {Passed: true, Score: 100, Weight: 2.0, Details: "No missing values"},
			"accuracy_amount_column":      {Passed: false, Score: 40, Weight: 1.5, Details: "Negative amounts found"},
		},
	}
}

const validPlanJson = `{
	"executive_summary": "Data needs attention.",
	"risk_assessment": "Moderate compliance risk.",
	"remediation_steps": [
		{"issue": "neg amounts", "action": "reject negatives", "priority": "HIGH"}
	]
}`

func newTestPipeline(provider llm.LLMProvider, fallbackURL string) *Pipeline {
	return NewPipeline(gateway.New(provider, gateway.Config{FallbackURL: fallbackURL}))
}

func TestPrivacyGuardrailDetectsPII(t *testing.T) {
	st := &State{Metadata: metadataWithColumns("ssn_number", "amount")}
	delta := privacyGuardrail(context.Background(), st)

	if delta.PrivacyCheck == nil {
		t.Fatal("PrivacyCheck delta is nil")
	}
	msg := *delta.PrivacyCheck
	if !strings.Contains(msg, "ALERT") {
		t.Errorf("message %q should contain ALERT", msg)
	}
	if !strings.Contains(msg, "ssn_number") {
		t.Errorf("message %q should name the offending column", msg)
	}
}

func TestPrivacyGuardrailCleanDataset(t *testing.T) {
	st := &State{Metadata: metadataWithColumns("amount", "date")}
	delta := privacyGuardrail(context.Background(), st)

	if got := *delta.PrivacyCheck; got != "Metadata approved. No explicit raw PII keys found." {
		t.Errorf("message = %q", got)
	}
}

func TestClassifyDataset(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{"kyc column", []string{"kyc_status", "name"}, CategoryKYC},
		{"passport column", []string{"passport_no"}, CategoryKYC},
		{"amount and date", []string{"amount", "transaction_date"}, CategoryTransactions},
		{"amount only", []string{"amount", "merchant"}, CategoryGeneral},
		{"generic", []string{"foo", "bar"}, CategoryGeneral},
		{"kyc wins over transactions", []string{"kyc_id", "amount", "date"}, CategoryKYC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyDataset(metadataWithColumns(tt.columns...)); got != tt.want {
				t.Errorf("ClassifyDataset() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsightsAgentNamesFailingDimensions(t *testing.T) {
	st := &State{Scores: testScores()}
	delta := insightsAgent(context.Background(), st)

	insight := *delta.Insights
	if !strings.Contains(insight, "60") {
		t.Errorf("insight %q should mention the health score", insight)
	}
	if !strings.Contains(insight, "accuracy") {
		t.Errorf("insight %q should mention the failing dimension", insight)
	}
	if strings.Contains(insight, "completeness") {
		t.Errorf("insight %q should not mention a perfect dimension", insight)
	}
}

func TestInsightsAgentPristineData(t *testing.T) {
	st := &State{Scores: &scoring.Scores{
		HealthScore:     100,
		DimensionScores: map[string]float64{"completeness": 100},
	}}
	delta := insightsAgent(context.Background(), st)

	if got := *delta.Insights; !strings.Contains(got, "pristine") {
		t.Errorf("insight = %q, want pristine note", got)
	}
}

func TestPipelineRunProducesPlan(t *testing.T) {
	provider := &stubLLM{reply: validPlanJson}
	p := newTestPipeline(provider, "")

	plan := p.Run(context.Background(), testScores(), metadataWithColumns("amount", "date"), "")

	if plan.ExecutiveSummary != "Data needs attention." {
		t.Errorf("ExecutiveSummary = %q", plan.ExecutiveSummary)
	}
	if len(plan.RemediationSteps) != 1 {
		t.Fatalf("RemediationSteps = %d, want 1", len(plan.RemediationSteps))
	}

	// The advisory prompt carries the derived classification and insights.
	if len(provider.lastMessages) != 2 {
		t.Fatalf("conversation length = %d, want system + user", len(provider.lastMessages))
	}
	system := provider.lastMessages[0].Content
	if !strings.Contains(system, CategoryTransactions) {
		t.Errorf("system prompt missing dataset classification")
	}
	if !strings.Contains(system, "Health Score is 60/100") {
		t.Errorf("system prompt missing insights line")
	}
}

func TestPipelineRunFrameworkLens(t *testing.T) {
	provider := &stubLLM{reply: validPlanJson}
	p := newTestPipeline(provider, "")

	p.Run(context.Background(), testScores(), metadataWithColumns("amount"), "SOX")

	system := provider.lastMessages[0].Content
	if !strings.Contains(system, "Compliance Lens") || !strings.Contains(system, "SOX") {
		t.Errorf("system prompt missing framework lens: %q", system)
	}
}

func TestPipelineRunIsDeterministic(t *testing.T) {
	provider := &stubLLM{reply: validPlanJson}
	p := newTestPipeline(provider, "")

	md := metadataWithColumns("amount", "date", "merchant")
	first := p.Run(context.Background(), testScores(), md, "")
	firstPrompt := provider.lastMessages[1].Content

	for i := 0; i < 10; i++ {
		next := p.Run(context.Background(), testScores(), md, "")
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("run %d produced a different plan", i)
		}
		if provider.lastMessages[1].Content != firstPrompt {
			t.Fatalf("run %d produced a different user prompt", i)
		}
	}
}

func TestPipelineRunFatalFailureYieldsErrorPlan(t *testing.T) {
	provider := &stubLLM{err: &llm.ProviderError{Provider: "gemini", StatusCode: 401, Body: "bad key"}}
	p := newTestPipeline(provider, "")

	plan := p.Run(context.Background(), testScores(), metadataWithColumns("amount"), "")

	if plan.ExecutiveSummary != "Error generating advice." {
		t.Errorf("ExecutiveSummary = %q", plan.ExecutiveSummary)
	}
	if plan.RiskAssessment == "" {
		t.Error("RiskAssessment should carry the failure reason")
	}
	if len(plan.RemediationSteps) != 0 {
		t.Errorf("RemediationSteps = %v, want empty", plan.RemediationSteps)
	}
}

func TestPipelineRunTotalFailureYieldsErrorPlan(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	provider := &stubLLM{err: &llm.ProviderError{Provider: "gemini", StatusCode: 429, Body: "quota"}}
	p := newTestPipeline(provider, srv.URL)

	plan := p.Run(context.Background(), testScores(), metadataWithColumns("amount"), "")

	if plan.ExecutiveSummary != "Error generating advice." {
		t.Errorf("ExecutiveSummary = %q", plan.ExecutiveSummary)
	}
	if len(plan.RemediationSteps) != 0 {
		t.Errorf("RemediationSteps = %v, want empty", plan.RemediationSteps)
	}
}

func TestPipelineRunUnparsableReplyYieldsErrorPlan(t *testing.T) {
	provider := &stubLLM{reply: "Sure! Here is my advice in prose."}
	p := newTestPipeline(provider, "")

	plan := p.Run(context.Background(), testScores(), metadataWithColumns("amount"), "")

	if plan.ExecutiveSummary != "Error generating advice." {
		t.Errorf("ExecutiveSummary = %q", plan.ExecutiveSummary)
	}
}

func TestStateApplyOnlyOverwritesSetFields(t *testing.T) {
	st := &State{PrivacyCheck: "existing", Insights: "kept"}

	check := "updated"
	st.apply(Delta{PrivacyCheck: &check})

	if st.PrivacyCheck != "updated" {
		t.Errorf("PrivacyCheck = %q", st.PrivacyCheck)
	}
	if st.Insights != "kept" {
		t.Errorf("Insights = %q, should be untouched", st.Insights)
	}
}
