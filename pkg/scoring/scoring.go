package scoring

import (
	"math"
	"sort"
	"strings"

	"finaudit-be/pkg/rules"
)

// Scores aggregates rule results into the health report consumed by the
// advisory pipeline and the frontend.
type Scores struct {
	HealthScore     float64                 `json:"health_score"`
	OverallScore    float64                 `json:"overall_score"`
	DimensionScores map[string]float64      `json:"dimension_scores"`
	RuleResults     map[string]rules.Result `json:"rule_results"`
}

// Calculate reduces rule results to a weighted overall score plus
// per-dimension averages. The dimension of a rule is the prefix of its key
// up to the first underscore.
func Calculate(ruleResults map[string]rules.Result) *Scores {
	var weightedSum, totalWeight float64
	dimSums := make(map[string]float64)
	dimCounts := make(map[string]int)

	for key, res := range ruleResults {
		weight := res.Weight
		if weight == 0 {
			weight = 1.0
		}
		weightedSum += res.Score * weight
		totalWeight += weight

		dim := dimensionOf(key)
		dimSums[dim] += res.Score
		dimCounts[dim]++
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = weightedSum / totalWeight
	}

	dimensions := make(map[string]float64, len(dimSums))
	for dim, sum := range dimSums {
		dimensions[dim] = round2(sum / float64(dimCounts[dim]))
	}

	return &Scores{
		HealthScore:     math.Round(overall),
		OverallScore:    round2(overall),
		DimensionScores: dimensions,
		RuleResults:     ruleResults,
	}
}

// FailedRules returns the keys of failed rules in sorted order.
func (s *Scores) FailedRules() []string {
	var failed []string
	for key, res := range s.RuleResults {
		if !res.Passed {
			failed = append(failed, key)
		}
	}
	sort.Strings(failed)
	return failed
}

func dimensionOf(ruleKey string) string {
	if idx := strings.Index(ruleKey, "_"); idx > 0 {
		return ruleKey[:idx]
	}
	return ruleKey
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
