package dto

import (
	"time"

	"github.com/google/uuid"

	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/analytics"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/provenance"
	"finaudit-be/pkg/scoring"
)

type AnalyzeResponse struct {
	ReportId   uuid.UUID                            `json:"report_id"`
	Filename   string                               `json:"filename"`
	Metadata   *dataset.Metadata                    `json:"metadata"`
	Scores     *scoring.Scores                      `json:"scores"`
	Analysis   *advisor.RemediationPlan             `json:"analysis"`
	Anomalies  map[string]analytics.ColumnAnomalies `json:"anomalies"`
	Impacts    map[string]float64                   `json:"impacts"`
	Provenance *provenance.Attestation              `json:"provenance"`
}

type ReportSummaryResponse struct {
	Id          uuid.UUID `json:"id"`
	Filename    string    `json:"filename"`
	DatasetType string    `json:"dataset_type"`
	HealthScore float64   `json:"health_score"`
	CreatedAt   time.Time `json:"created_at"`
}

type ReportDetailResponse struct {
	Id          uuid.UUID                `json:"id"`
	Filename    string                   `json:"filename"`
	Framework   string                   `json:"framework,omitempty"`
	DatasetType string                   `json:"dataset_type"`
	Metadata    *dataset.Metadata        `json:"metadata"`
	Scores      *scoring.Scores          `json:"scores"`
	Analysis    *advisor.RemediationPlan `json:"analysis"`
	Provenance  *provenance.Attestation  `json:"provenance"`
	CreatedAt   time.Time                `json:"created_at"`
}
