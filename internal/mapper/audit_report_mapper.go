package mapper

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"finaudit-be/internal/entity"
	"finaudit-be/internal/model"
	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/provenance"
	"finaudit-be/pkg/scoring"
)

func AuditReportToModel(e *entity.AuditReport) (*model.AuditReport, error) {
	metadata, err := toJSON(e.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	scores, err := toJSON(e.Scores)
	if err != nil {
		return nil, fmt.Errorf("marshal scores: %w", err)
	}
	analysis, err := toJSON(e.Analysis)
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	attestation, err := toJSON(e.Provenance)
	if err != nil {
		return nil, fmt.Errorf("marshal provenance: %w", err)
	}

	return &model.AuditReport{
		Id:           e.Id,
		Filename:     e.Filename,
		Framework:    e.Framework,
		DatasetType:  e.DatasetType,
		HealthScore:  e.HealthScore,
		OverallScore: e.OverallScore,
		Metadata:     metadata,
		Scores:       scores,
		Analysis:     analysis,
		Provenance:   attestation,
		CreatedAt:    e.CreatedAt,
	}, nil
}

func AuditReportToEntity(m *model.AuditReport) (*entity.AuditReport, error) {
	e := &entity.AuditReport{
		Id:           m.Id,
		Filename:     m.Filename,
		Framework:    m.Framework,
		DatasetType:  m.DatasetType,
		HealthScore:  m.HealthScore,
		OverallScore: m.OverallScore,
		CreatedAt:    m.CreatedAt,
	}

	if len(m.Metadata) > 0 {
		e.Metadata = &dataset.Metadata{}
		if err := json.Unmarshal(m.Metadata, e.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	if len(m.Scores) > 0 {
		e.Scores = &scoring.Scores{}
		if err := json.Unmarshal(m.Scores, e.Scores); err != nil {
			return nil, fmt.Errorf("unmarshal scores: %w", err)
		}
	}
	if len(m.Analysis) > 0 {
		e.Analysis = &advisor.RemediationPlan{}
		if err := json.Unmarshal(m.Analysis, e.Analysis); err != nil {
			return nil, fmt.Errorf("unmarshal analysis: %w", err)
		}
	}
	if len(m.Provenance) > 0 {
		e.Provenance = &provenance.Attestation{}
		if err := json.Unmarshal(m.Provenance, e.Provenance); err != nil {
			return nil, fmt.Errorf("unmarshal provenance: %w", err)
		}
	}

	return e, nil
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
