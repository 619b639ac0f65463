package advisor

import (
	"testing"
)

func TestParsePlanStripsFences(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bare json", `{"executive_summary": "ok", "risk_assessment": "low", "remediation_steps": []}`},
		{"json fence", "```json\n{\"executive_summary\": \"ok\", \"risk_assessment\": \"low\", \"remediation_steps\": []}\n```"},
		{"plain fence", "```\n{\"executive_summary\": \"ok\", \"risk_assessment\": \"low\", \"remediation_steps\": []}\n```"},
		{"surrounding whitespace", "\n\n  {\"executive_summary\": \"ok\", \"risk_assessment\": \"low\", \"remediation_steps\": []}  \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlan(tt.raw)
			if err != nil {
				t.Fatalf("ParsePlan() error = %v", err)
			}
			if plan.ExecutiveSummary != "ok" {
				t.Errorf("ExecutiveSummary = %q, want %q", plan.ExecutiveSummary, "ok")
			}
		})
	}
}

func TestParsePlanInvalidJson(t *testing.T) {
	if _, err := ParsePlan("I am sorry, I cannot produce JSON today."); err == nil {
		t.Fatal("ParsePlan() expected error on non-JSON reply")
	}
}

func TestParsePlanReordersSteps(t *testing.T) {
	raw := `{
		"executive_summary": "summary",
		"risk_assessment": "risk",
		"remediation_steps": [
			{"issue": "a", "action": "fix a", "priority": "LOW"},
			{"issue": "b", "action": "fix b", "priority": "CRITICAL"},
			{"issue": "c", "action": "fix c", "priority": "MEDIUM"},
			{"issue": "d", "action": "fix d", "priority": "HIGH"}
		]
	}`

	plan, err := ParsePlan(raw)
	if err != nil {
		t.Fatalf("ParsePlan() error = %v", err)
	}

	wantOrder := []string{"b", "d", "c", "a"}
	for i, want := range wantOrder {
		if plan.RemediationSteps[i].Issue != want {
			t.Errorf("step[%d] = %q, want %q", i, plan.RemediationSteps[i].Issue, want)
		}
	}
}

func TestSortStepsStableWithinTier(t *testing.T) {
	steps := []RemediationStep{
		{Issue: "first-high", Priority: "HIGH"},
		{Issue: "unknown", Priority: "SOMEDAY"},
		{Issue: "second-high", Priority: "high"},
		{Issue: "crit", Priority: " critical "},
	}

	SortSteps(steps)

	wantOrder := []string{"crit", "first-high", "second-high", "unknown"}
	for i, want := range wantOrder {
		if steps[i].Issue != want {
			t.Errorf("step[%d] = %q, want %q", i, steps[i].Issue, want)
		}
	}
}

func TestErrorPlan(t *testing.T) {
	plan := ErrorPlan("quota exceeded")
	if plan.ExecutiveSummary != "Error generating advice." {
		t.Errorf("ExecutiveSummary = %q", plan.ExecutiveSummary)
	}
	if plan.RiskAssessment != "quota exceeded" {
		t.Errorf("RiskAssessment = %q", plan.RiskAssessment)
	}
	if plan.RemediationSteps == nil || len(plan.RemediationSteps) != 0 {
		t.Errorf("RemediationSteps = %v, want empty non-nil slice", plan.RemediationSteps)
	}

	if got := ErrorPlan("").RiskAssessment; got != "LLM Failure" {
		t.Errorf("empty reason RiskAssessment = %q, want %q", got, "LLM Failure")
	}
}
