package repository

import (
	"context"

	"github.com/google/uuid"

	"finaudit-be/internal/entity"
)

type IAuditReportRepository interface {
	Create(ctx context.Context, report *entity.AuditReport) error
	FindAll(ctx context.Context, limit int) ([]*entity.AuditReport, error)
	FindOne(ctx context.Context, id uuid.UUID) (*entity.AuditReport, error)
}
