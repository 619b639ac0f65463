package entity

import (
	"time"

	"github.com/google/uuid"

	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/provenance"
	"finaudit-be/pkg/scoring"
)

// AuditReport is one persisted analysis run.
type AuditReport struct {
	Id           uuid.UUID
	Filename     string
	Framework    string
	DatasetType  string
	HealthScore  float64
	OverallScore float64
	Metadata     *dataset.Metadata
	Scores       *scoring.Scores
	Analysis     *advisor.RemediationPlan
	Provenance   *provenance.Attestation
	CreatedAt    time.Time
}
