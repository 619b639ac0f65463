package rules

import (
	"fmt"
	"sort"
	"strings"

	"finaudit-be/pkg/dataset"
)

// Result is the outcome of a single deterministic rule evaluation.
type Result struct {
	Passed  bool    `json:"passed"`
	Score   float64 `json:"score"`
	Weight  float64 `json:"weight"`
	Details string  `json:"details"`
}

// Engine evaluates metadata-only compliance rules. It never touches row
// values, so it can run on profiled output alone.
type Engine struct {
	metadata *dataset.Metadata
}

func NewEngine(metadata *dataset.Metadata) *Engine {
	return &Engine{metadata: metadata}
}

// RunAll evaluates every registered rule. Rule keys are prefixed with the
// scoring dimension they belong to (e.g. "completeness_missing_values").
func (e *Engine) RunAll() map[string]Result {
	return map[string]Result{
		"completeness_missing_values": e.checkMissingValues(),
		"accuracy_amount_column":      e.checkAmountColumn(),
		"consistency_date_column":     e.checkDateColumn(),
		"compliance_pii_exposure":     e.checkPIIExposure(),
		"volume_row_count":            e.checkRowCount(),
	}
}

func (e *Engine) checkMissingValues() Result {
	totalCells := e.metadata.TotalRows * e.metadata.TotalColumns
	if totalCells == 0 {
		return Result{Passed: false, Score: 0, Weight: 2.0, Details: "Dataset is empty; completeness cannot be assessed."}
	}

	nulls := 0
	for _, col := range e.metadata.Columns {
		nulls += col.NullCount
	}
	ratio := float64(nulls) / float64(totalCells)
	score := (1 - ratio) * 100

	if nulls == 0 {
		return Result{Passed: true, Score: 100, Weight: 2.0, Details: "No missing values detected."}
	}
	return Result{
		Passed:  ratio <= 0.05,
		Score:   round2(score),
		Weight:  2.0,
		Details: fmt.Sprintf("%d missing cells (%.1f%% of dataset).", nulls, ratio*100),
	}
}

func (e *Engine) checkAmountColumn() Result {
	for name, col := range e.metadata.Columns {
		if strings.Contains(strings.ToLower(name), "amount") {
			if col.DType == "integer" || col.DType == "float" {
				return Result{Passed: true, Score: 100, Weight: 1.5, Details: fmt.Sprintf("Monetary column '%s' is numeric.", name)}
			}
			return Result{
				Passed:  false,
				Score:   40,
				Weight:  1.5,
				Details: fmt.Sprintf("Monetary column '%s' has non-numeric type '%s'.", name, col.DType),
			}
		}
	}
	return Result{Passed: false, Score: 50, Weight: 1.5, Details: "No amount-like column found; financial accuracy checks are limited."}
}

func (e *Engine) checkDateColumn() Result {
	var dateCols []string
	for name, col := range e.metadata.Columns {
		if strings.Contains(strings.ToLower(name), "date") || col.DType == "date" {
			dateCols = append(dateCols, name)
		}
	}
	sort.Strings(dateCols)

	if len(dateCols) == 0 {
		return Result{Passed: false, Score: 60, Weight: 1.0, Details: "No date column found; record timeline cannot be verified."}
	}
	for _, name := range dateCols {
		if e.metadata.Columns[name].DType != "date" {
			return Result{
				Passed:  false,
				Score:   70,
				Weight:  1.0,
				Details: fmt.Sprintf("Date column '%s' contains inconsistent formats.", name),
			}
		}
	}
	return Result{Passed: true, Score: 100, Weight: 1.0, Details: fmt.Sprintf("Date columns verified: %s.", strings.Join(dateCols, ", "))}
}

func (e *Engine) checkPIIExposure() Result {
	piiKeywords := []string{"ssn", "password", "social_security"}

	var exposed []string
	for name := range e.metadata.Columns {
		lower := strings.ToLower(name)
		for _, kw := range piiKeywords {
			if strings.Contains(lower, kw) {
				exposed = append(exposed, name)
				break
			}
		}
	}
	sort.Strings(exposed)

	if len(exposed) > 0 {
		return Result{
			Passed:  false,
			Score:   0,
			Weight:  3.0,
			Details: fmt.Sprintf("Raw PII columns present: %s. Tokenize or drop before storage.", strings.Join(exposed, ", ")),
		}
	}
	return Result{Passed: true, Score: 100, Weight: 3.0, Details: "No raw PII column names detected."}
}

func (e *Engine) checkRowCount() Result {
	if e.metadata.TotalRows == 0 {
		return Result{Passed: false, Score: 0, Weight: 0.5, Details: "Dataset contains no rows."}
	}
	return Result{Passed: true, Score: 100, Weight: 0.5, Details: fmt.Sprintf("Dataset contains %d rows.", e.metadata.TotalRows)}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
