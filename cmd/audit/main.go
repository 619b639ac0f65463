package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"

	"finaudit-be/internal/config"
	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/advisor/gateway"
	"finaudit-be/pkg/analytics"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/llm/factory"
	"finaudit-be/pkg/rules"
	"finaudit-be/pkg/scoring"
)

// One-shot dataset audit without the REST server or database.
func main() {
	filePath := flag.String("file", "", "path to the CSV dataset to audit")
	framework := flag.String("framework", "", "compliance framework lens (e.g. SOX, PCI-DSS)")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: audit -file <dataset.csv> [-framework <name>]")
		os.Exit(2)
	}

	f, err := os.Open(*filePath)
	if err != nil {
		color.Red("Failed to open dataset: %v", err)
		os.Exit(1)
	}
	defer f.Close()

	ds, err := dataset.LoadCSV(f)
	if err != nil {
		color.Red("Failed to parse CSV: %v", err)
		os.Exit(1)
	}
	metadata := dataset.Profile(ds)

	ruleResults := rules.NewEngine(metadata).RunAll()
	scores := scoring.Calculate(ruleResults)
	anomalies := analytics.DetectAnomalies(ds)
	impacts := analytics.SimulateImpacts(ruleResults)

	color.Cyan("🔍 FinAUDIT Report: %s\n", *filePath)
	color.White("Dataset: %d rows, %d columns (%s)",
		metadata.TotalRows, metadata.TotalColumns, advisor.ClassifyDataset(metadata))

	scoreColor := color.Green
	if scores.HealthScore < 70 {
		scoreColor = color.Red
	} else if scores.HealthScore < 90 {
		scoreColor = color.Yellow
	}
	scoreColor("Health Score: %v/100", scores.HealthScore)

	color.Yellow("\nRule Results")
	ruleKeys := make([]string, 0, len(ruleResults))
	for key := range ruleResults {
		ruleKeys = append(ruleKeys, key)
	}
	sort.Strings(ruleKeys)
	for _, key := range ruleKeys {
		res := ruleResults[key]
		if res.Passed {
			color.Green("  ✔ %-30s %6.1f  %s", key, res.Score, res.Details)
		} else {
			impact := impacts[key]
			color.Red("  ✘ %-30s %6.1f  %s (impact: +%.2f pts if fixed)", key, res.Score, res.Details, impact)
		}
	}

	if len(anomalies) > 0 {
		color.Yellow("\nAnomalies")
		cols := make([]string, 0, len(anomalies))
		for col := range anomalies {
			cols = append(cols, col)
		}
		sort.Strings(cols)
		for _, col := range cols {
			color.White("  %s: %d outliers (mean %.2f, std %.2f)",
				col, anomalies[col].Count, anomalies[col].Mean, anomalies[col].Std)
		}
	}

	plan := runAdvisory(scores, metadata, *framework)
	color.Yellow("\nAI Advisory")
	color.White("  Summary: %s", plan.ExecutiveSummary)
	color.White("  Risk:    %s", plan.RiskAssessment)
	for _, step := range plan.RemediationSteps {
		color.White("  [%s] %s: %s", step.Priority, step.Issue, step.Action)
	}
}

func runAdvisory(scores *scoring.Scores, metadata *dataset.Metadata, framework string) *advisor.RemediationPlan {
	cfg := config.Load()
	if cfg.Keys.GoogleGemini == "" && cfg.Ai.LLMProvider != "ollama" {
		return advisor.SkippedPlan()
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		return advisor.ErrorPlan(err.Error())
	}

	gw := gateway.New(llmProvider, gateway.Config{
		FallbackURL:  cfg.Ai.FallbackURL,
		RapidAPIKey:  cfg.Keys.RapidAPI,
		RapidAPIHost: cfg.Ai.FallbackHost,
	})
	return advisor.NewPipeline(gw).Run(context.Background(), scores, metadata, framework)
}
