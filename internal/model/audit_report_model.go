package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditReport struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Filename     string         `gorm:"type:text;not null"`
	Framework    string         `gorm:"type:text"`
	DatasetType  string         `gorm:"type:text"`
	HealthScore  float64        `gorm:"not null"`
	OverallScore float64        `gorm:"not null"`
	Metadata     datatypes.JSON `gorm:"type:jsonb"`
	Scores       datatypes.JSON `gorm:"type:jsonb"`
	Analysis     datatypes.JSON `gorm:"type:jsonb"`
	Provenance   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (AuditReport) TableName() string {
	return "audit_reports"
}
