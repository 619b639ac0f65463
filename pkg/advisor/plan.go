package advisor

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Remediation priorities, highest first.
const (
	PriorityCritical = "CRITICAL"
	PriorityHigh     = "HIGH"
	PriorityMedium   = "MEDIUM"
	PriorityLow      = "LOW"
)

type RemediationStep struct {
	Issue    string `json:"issue"`
	Action   string `json:"action"`
	Priority string `json:"priority"`
}

// RemediationPlan is the structured output contract enforced on the
// model's reply. Once the advisory stage completes it is never mutated.
type RemediationPlan struct {
	ExecutiveSummary string            `json:"executive_summary"`
	RiskAssessment   string            `json:"risk_assessment"`
	RemediationSteps []RemediationStep `json:"remediation_steps"`
}

var fenceReplacer = strings.NewReplacer("```json", "", "```", "")

// ParsePlan strips markdown code fences from the model reply, parses the
// remediation plan, and re-sorts the steps so the priority ordering holds
// regardless of model compliance.
func ParsePlan(raw string) (*RemediationPlan, error) {
	cleaned := strings.TrimSpace(fenceReplacer.Replace(raw))

	var plan RemediationPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, fmt.Errorf("parse remediation plan: %w", err)
	}

	SortSteps(plan.RemediationSteps)
	return &plan, nil
}

// SortSteps orders steps CRITICAL > HIGH > MEDIUM > LOW, stable within a
// tier. Unknown priorities rank after LOW but are preserved.
func SortSteps(steps []RemediationStep) {
	sort.SliceStable(steps, func(i, j int) bool {
		return priorityRank(steps[i].Priority) < priorityRank(steps[j].Priority)
	})
}

func priorityRank(priority string) int {
	switch strings.ToUpper(strings.TrimSpace(priority)) {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// ErrorPlan is the local-recovery placeholder substituted when the
// completion chain fails. The pipeline always terminates with a
// well-formed plan.
func ErrorPlan(reason string) *RemediationPlan {
	if reason == "" {
		reason = "LLM Failure"
	}
	return &RemediationPlan{
		ExecutiveSummary: "Error generating advice.",
		RiskAssessment:   reason,
		RemediationSteps: []RemediationStep{},
	}
}

// SkippedPlan is returned when no LLM credential is configured at all.
func SkippedPlan() *RemediationPlan {
	return &RemediationPlan{
		ExecutiveSummary: "AI analysis skipped (GOOGLE_GEMINI_API_KEY not set).",
		RiskAssessment:   "Configure the API key to enable GenAI insights.",
		RemediationSteps: []RemediationStep{},
	}
}
