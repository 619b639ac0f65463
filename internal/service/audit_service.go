package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"finaudit-be/internal/dto"
	"finaudit-be/internal/entity"
	"finaudit-be/internal/pkg/logger"
	"finaudit-be/internal/repository"
	"finaudit-be/internal/repository/memory"
	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/analytics"
	"finaudit-be/pkg/dataset"
	"finaudit-be/pkg/events"
	"finaudit-be/pkg/provenance"
	"finaudit-be/pkg/rules"
	"finaudit-be/pkg/scoring"
)

// IAuditService runs the full analysis flow and serves the report history.
type IAuditService interface {
	Analyze(ctx context.Context, filename string, file io.Reader, framework string) (*dto.AnalyzeResponse, error)
	ListReports(ctx context.Context, limit int) ([]*dto.ReportSummaryResponse, error)
	GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportDetailResponse, error)
}

type auditService struct {
	reportRepo    repository.IAuditReportRepository
	contextRepo   *memory.ContextRepository
	pipeline      *advisor.Pipeline
	provenance    *provenance.Service
	pubSub        *gochannel.GoChannel
	topicName     string
	sysLogger     logger.ILogger
	llmConfigured bool
}

func NewAuditService(
	reportRepo repository.IAuditReportRepository,
	contextRepo *memory.ContextRepository,
	pipeline *advisor.Pipeline,
	provenanceService *provenance.Service,
	pubSub *gochannel.GoChannel,
	topicName string,
	sysLogger logger.ILogger,
	llmConfigured bool,
) IAuditService {
	return &auditService{
		reportRepo:    reportRepo,
		contextRepo:   contextRepo,
		pipeline:      pipeline,
		provenance:    provenanceService,
		pubSub:        pubSub,
		topicName:     topicName,
		sysLogger:     sysLogger,
		llmConfigured: llmConfigured,
	}
}

func (s *auditService) Analyze(ctx context.Context, filename string, file io.Reader, framework string) (*dto.AnalyzeResponse, error) {
	// 1. Ingestion & Profiling (metadata extraction)
	ds, err := dataset.LoadCSV(file)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	metadata := dataset.Profile(ds)

	// 2. Deterministic rule execution + scoring
	ruleResults := rules.NewEngine(metadata).RunAll()
	scores := scoring.Calculate(ruleResults)

	// 3. Statistics (row values stay local to this step)
	anomalies := analytics.DetectAnomalies(ds)
	impacts := analytics.SimulateImpacts(ruleResults)

	// 4. Advisory pipeline. Degrades to the skipped placeholder when no
	// credential is configured; the request itself never fails on LLM errors.
	var analysis *advisor.RemediationPlan
	if s.llmConfigured {
		analysis = s.pipeline.Run(ctx, scores, metadata, framework)
	} else {
		analysis = advisor.SkippedPlan()
	}
	datasetType := advisor.ClassifyDataset(metadata)

	// 5. Provenance attestation
	attestation, err := s.signAttestation(filename, metadata, scores, analysis)
	if err != nil {
		return nil, err
	}

	// 6. Persist + cache context for chat follow-ups
	report := &entity.AuditReport{
		Id:           uuid.New(),
		Filename:     filename,
		Framework:    framework,
		DatasetType:  datasetType,
		HealthScore:  scores.HealthScore,
		OverallScore: scores.OverallScore,
		Metadata:     metadata,
		Scores:       scores,
		Analysis:     analysis,
		Provenance:   attestation,
		CreatedAt:    time.Now(),
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		s.sysLogger.Error("audit", "Failed to persist audit report", map[string]interface{}{
			"error":    err.Error(),
			"filename": filename,
		})
		return nil, err
	}

	s.contextRepo.Save(report.Id.String(), &advisor.ChatContext{
		Metadata:    metadata,
		Scores:      scores,
		DatasetType: datasetType,
		Analysis:    analysis,
	})

	s.publishAuditCompleted(report)

	s.sysLogger.Info("audit", "Analysis complete", map[string]interface{}{
		"report_id":    report.Id.String(),
		"filename":     filename,
		"health_score": scores.HealthScore,
	})

	return &dto.AnalyzeResponse{
		ReportId:   report.Id,
		Filename:   filename,
		Metadata:   metadata,
		Scores:     scores,
		Analysis:   analysis,
		Anomalies:  anomalies,
		Impacts:    impacts,
		Provenance: attestation,
	}, nil
}

func (s *auditService) ListReports(ctx context.Context, limit int) ([]*dto.ReportSummaryResponse, error) {
	reports, err := s.reportRepo.FindAll(ctx, limit)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ReportSummaryResponse, 0, len(reports))
	for _, r := range reports {
		res = append(res, &dto.ReportSummaryResponse{
			Id:          r.Id,
			Filename:    r.Filename,
			DatasetType: r.DatasetType,
			HealthScore: r.HealthScore,
			CreatedAt:   r.CreatedAt,
		})
	}
	return res, nil
}

func (s *auditService) GetReport(ctx context.Context, id uuid.UUID) (*dto.ReportDetailResponse, error) {
	report, err := s.reportRepo.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "report not found")
	}

	return &dto.ReportDetailResponse{
		Id:          report.Id,
		Filename:    report.Filename,
		Framework:   report.Framework,
		DatasetType: report.DatasetType,
		Metadata:    report.Metadata,
		Scores:      report.Scores,
		Analysis:    report.Analysis,
		Provenance:  report.Provenance,
		CreatedAt:   report.CreatedAt,
	}, nil
}

func (s *auditService) signAttestation(filename string, metadata *dataset.Metadata, scores *scoring.Scores, analysis *advisor.RemediationPlan) (*provenance.Attestation, error) {
	metadataHash, err := s.provenance.ComputeFingerprint(metadata)
	if err != nil {
		return nil, err
	}
	analysisHash, err := s.provenance.ComputeFingerprint(analysis)
	if err != nil {
		return nil, err
	}

	return s.provenance.SignRecord(map[string]interface{}{
		"filename":              filename,
		"health_score":          scores.HealthScore,
		"overall_score":         scores.OverallScore,
		"metadata_hash":         metadataHash,
		"analysis_summary_hash": analysisHash,
	})
}

func (s *auditService) publishAuditCompleted(report *entity.AuditReport) {
	event := events.NewAuditCompleted(report.Id.String(), report.Filename, report.HealthScore)
	payload, err := json.Marshal(event.Payload())
	if err != nil {
		s.sysLogger.Warn("audit", "Failed to marshal audit event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	if err := s.pubSub.Publish(s.topicName, msg); err != nil {
		// Event delivery is best-effort; the report is already persisted.
		s.sysLogger.Warn("audit", "Failed to publish audit event", map[string]interface{}{"error": err.Error()})
	}
}
