package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"finaudit-be/pkg/advisor/gateway"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/llm"
	"finaudit-be/pkg/scoring"
)

// ChatContext bundles the full prior audit context for a follow-up
// question. The whole object is serialized into the user turn: the context
// is bounded (summary statistics, never raw rows), so completeness beats
// retrieval here.
type ChatContext struct {
	Metadata    *dataset.Metadata `json:"metadata,omitempty"`
	Scores      *scoring.Scores   `json:"scores,omitempty"`
	DatasetType string            `json:"dataset_type,omitempty"`
	Analysis    *RemediationPlan  `json:"analysis,omitempty"`
}

const auditorSystemPrompt = `You are the 'FinAUDIT Independent Auditor', an expert AI agent responsible for explaining the results of a financial data compliance audit.

Your Mandate:
1. **Full Transparency**: You have access to the COMPLETE audit report. Answer ANY question related to the data quality, scores, rules, or specific failures. Do not restrict information.
2. **Persona**: Professional, objective, and authoritative (like a CPA or Auditor). Use phrases like "based on our analysis", "the audit evidence suggests".
3. **Grounding**: Strictly base your answers on the provided 'Context JSON'.
4. **Format**: Use Markdown (Bold, Lists, Tables) to present data clearly.

If asked about the 'opinion', derive it from the Health Score (Unqualified if >= 90, Qualified if 70-89, Adverse if < 70).`

// Responder answers open-ended questions about a completed audit.
type Responder struct {
	gw *gateway.Gateway
}

func NewResponder(gw *gateway.Gateway) *Responder {
	return &Responder{gw: gw}
}

// Ask calls the gateway once (non-blocking variant) and returns its text
// unchanged. Any failure is converted into a user-visible error string
// rather than propagated.
func (r *Responder) Ask(ctx context.Context, question string, cc *ChatContext) string {
	contextJson, err := json.MarshalIndent(buildFullContext(cc), "", "  ")
	if err != nil {
		return fmt.Sprintf("Auditor Error: %v", err)
	}

	conversation := []llm.Message{
		{Role: llm.RoleSystem, Content: auditorSystemPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("Context JSON:\n%s\n\nUser Question: %s", contextJson, question)},
	}

	select {
	case res := <-r.gw.CompleteAsync(ctx, conversation):
		if res.Err != nil {
			return fmt.Sprintf("Auditor Error: %v", res.Err)
		}
		return res.Text
	case <-ctx.Done():
		return fmt.Sprintf("Auditor Error: %v", ctx.Err())
	}
}

type reportSummary struct {
	HealthScore           float64 `json:"health_score"`
	DatasetClassification string  `json:"dataset_classification"`
	RowCount              int     `json:"row_count"`
	ColumnCount           int     `json:"column_count"`
}

type fullContext struct {
	ReportSummary       reportSummary      `json:"report_summary"`
	DimensionBreakdown  map[string]float64 `json:"dimension_breakdown"`
	DetailedRuleResults interface{}        `json:"detailed_rule_results"`
	AIRiskAssessment    string             `json:"ai_risk_assessment"`
	AIRemediationPlan   []RemediationStep  `json:"ai_remediation_plan"`
	Columns             []string           `json:"columns"`
}

func buildFullContext(cc *ChatContext) fullContext {
	if cc == nil {
		cc = &ChatContext{}
	}

	full := fullContext{
		AIRiskAssessment: "Not available",
	}

	full.ReportSummary.DatasetClassification = cc.DatasetType
	if full.ReportSummary.DatasetClassification == "" {
		full.ReportSummary.DatasetClassification = "Unknown"
	}

	if cc.Scores != nil {
		full.ReportSummary.HealthScore = cc.Scores.HealthScore
		full.DimensionBreakdown = cc.Scores.DimensionScores
		full.DetailedRuleResults = cc.Scores.RuleResults
	}
	if cc.Metadata != nil {
		full.ReportSummary.RowCount = cc.Metadata.TotalRows
		full.ReportSummary.ColumnCount = cc.Metadata.TotalColumns
		full.Columns = cc.Metadata.ColumnNames()
		sort.Strings(full.Columns)
	}
	if cc.Analysis != nil {
		if cc.Analysis.RiskAssessment != "" {
			full.AIRiskAssessment = cc.Analysis.RiskAssessment
		}
		full.AIRemediationPlan = cc.Analysis.RemediationSteps
	}

	return full
}
