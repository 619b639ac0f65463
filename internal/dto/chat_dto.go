package dto

import (
	"github.com/google/uuid"

	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/scoring"
)

type ChatRequest struct {
	Question string          `json:"question" validate:"required"`
	ReportId *uuid.UUID      `json:"report_id,omitempty"`
	Context  *ChatContextDTO `json:"context,omitempty"`
}

// ChatContextDTO mirrors advisor.ChatContext on the wire so callers can
// resend a prior analyze response as chat grounding.
type ChatContextDTO struct {
	Metadata    *dataset.Metadata        `json:"metadata,omitempty"`
	Scores      *scoring.Scores          `json:"scores,omitempty"`
	DatasetType string                   `json:"dataset_type,omitempty"`
	Analysis    *advisor.RemediationPlan `json:"analysis,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}
