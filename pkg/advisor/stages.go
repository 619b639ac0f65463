package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/llm"
)

// Dataset categories assigned by the metadata analyst.
const (
	CategoryKYC          = "KYC / Identity Data"
	CategoryTransactions = "Financial Transaction Data"
	CategoryGeneral      = "General Financial Data"
)

var piiKeywords = []string{"ssn", "password", "social_security"}

// privacyGuardrail scans column names for raw PII indicators. Detection
// only: it reports but never blocks the pipeline or mutates metadata.
func privacyGuardrail(_ context.Context, st *State) Delta {
	var found []string
	for name := range st.Metadata.Columns {
		lower := strings.ToLower(name)
		for _, kw := range piiKeywords {
			if strings.Contains(lower, kw) {
				found = append(found, name)
				break
			}
		}
	}
	sort.Strings(found)

	var msg string
	if len(found) > 0 {
		msg = fmt.Sprintf("ALERT: Potential PII detected in columns: %v. Metadata redacted.", found)
		log.Printf("[WARN] Privacy Guardrail: %s", msg)
	} else {
		msg = "Metadata approved. No explicit raw PII keys found."
	}

	return Delta{PrivacyCheck: &msg}
}

// ClassifyDataset assigns one of the fixed dataset categories from
// column-name heuristics. Total: always yields exactly one category.
func ClassifyDataset(md *dataset.Metadata) string {
	names := md.ColumnNames()
	sort.Strings(names)
	colStr := strings.ToLower(strings.Join(names, ", "))

	switch {
	case strings.Contains(colStr, "kyc") || strings.Contains(colStr, "passport"):
		return CategoryKYC
	case strings.Contains(colStr, "amount") && strings.Contains(colStr, "date"):
		return CategoryTransactions
	default:
		return CategoryGeneral
	}
}

func metadataAnalyst(_ context.Context, st *State) Delta {
	category := ClassifyDataset(st.Metadata)
	return Delta{DatasetType: &category}
}

// insightsAgent summarizes scoring trends: the aggregate health value plus
// every dimension below the maximum.
func insightsAgent(_ context.Context, st *State) Delta {
	var failedDims []string
	for dim, score := range st.Scores.DimensionScores {
		if score < 100 {
			failedDims = append(failedDims, dim)
		}
	}
	sort.Strings(failedDims)

	insight := fmt.Sprintf("Health Score is %v/100.", st.Scores.HealthScore)
	if len(failedDims) > 0 {
		insight += fmt.Sprintf(" Primary issues found in: %s.", strings.Join(failedDims, ", "))
	} else {
		insight += " Data is pristine."
	}

	return Delta{Insights: &insight}
}

// advisoryAgent builds the remediation-plan conversation, calls the
// completion gateway and enforces the structured-output contract. Every
// failure in the chain collapses to the error placeholder; this stage
// never propagates an error to the runner.
func (p *Pipeline) advisoryAgent(ctx context.Context, st *State) Delta {
	conversation := []llm.Message{
		{Role: llm.RoleSystem, Content: advisorySystemPrompt(st)},
		{Role: llm.RoleUser, Content: advisoryUserPrompt(st)},
	}

	reply, err := p.gw.Complete(ctx, conversation)
	if err != nil {
		log.Printf("[ERROR] Advisory Agent: completion failed: %v", err)
		return Delta{Analysis: ErrorPlan(err.Error())}
	}

	plan, err := ParsePlan(reply)
	if err != nil {
		log.Printf("[ERROR] Advisory Agent: %v", err)
		return Delta{Analysis: ErrorPlan(err.Error())}
	}

	return Delta{Analysis: plan}
}

func advisorySystemPrompt(st *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an Expert Financial Compliance Advisor.
Context: %s
Insights: %s
Privacy Review: %s

Role: Analyze the following scores and rule details to generate a prioritized remediation plan.

**Priority Logic**:
- **CRITICAL**: Security gaps (PCI DSS, PII), Major Fraud risks, Clear Regulatory violations.
- **HIGH**: Financial Inaccuracies (Negative amounts, Currency mismatches), Missing required fields.
- **MEDIUM**: Data Hygiene (Date formats, Consistency), Operational warnings.
- **LOW**: Optimization suggestions.

Output strictly valid JSON:
{
    "executive_summary": "One sentence overview.",
    "risk_assessment": "Short paragraph on compliance risks.",
    "remediation_steps": [
        {"issue": "Brief issue title", "action": "Specific fix action", "priority": "CRITICAL/HIGH/MEDIUM/LOW"}
    ]
}

**Important**: Sort the 'remediation_steps' array so 'CRITICAL' items appear first, followed by 'HIGH', then 'MEDIUM'.`,
		st.DatasetType, st.Insights, st.PrivacyCheck)

	if st.Framework != "" {
		fmt.Fprintf(&b, `

**Compliance Lens**: The caller audits against the '%s' framework. Prioritize only issues relevant to %s; rank everything outside its scope as LOW.`,
			st.Framework, st.Framework)
	}

	return b.String()
}

func advisoryUserPrompt(st *State) string {
	// Map keys marshal in sorted order, keeping the prompt deterministic.
	dimJson, err := json.MarshalIndent(st.Scores.DimensionScores, "", "  ")
	if err != nil {
		dimJson = []byte("{}")
	}
	return fmt.Sprintf("Scores: %s\nFailed Rules: %v", dimJson, st.Scores.FailedRules())
}
