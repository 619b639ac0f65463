package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"finaudit-be/internal/entity"
	"finaudit-be/internal/mapper"
	"finaudit-be/internal/model"
	"finaudit-be/internal/repository"
)

type auditReportRepository struct {
	db *gorm.DB
}

func NewAuditReportRepository(db *gorm.DB) repository.IAuditReportRepository {
	return &auditReportRepository{db: db}
}

func (r *auditReportRepository) Create(ctx context.Context, report *entity.AuditReport) error {
	m, err := mapper.AuditReportToModel(report)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *auditReportRepository) FindAll(ctx context.Context, limit int) ([]*entity.AuditReport, error) {
	if limit <= 0 {
		limit = 50
	}

	var models []model.AuditReport
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	reports := make([]*entity.AuditReport, 0, len(models))
	for i := range models {
		e, err := mapper.AuditReportToEntity(&models[i])
		if err != nil {
			return nil, err
		}
		reports = append(reports, e)
	}
	return reports, nil
}

func (r *auditReportRepository) FindOne(ctx context.Context, id uuid.UUID) (*entity.AuditReport, error) {
	var m model.AuditReport
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mapper.AuditReportToEntity(&m)
}
