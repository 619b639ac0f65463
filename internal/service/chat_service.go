package service

import (
	"context"

	"finaudit-be/internal/dto"
	"finaudit-be/internal/pkg/logger"
	"finaudit-be/internal/repository/memory"
	"finaudit-be/pkg/advisor"
)

const missingKeyReply = "I need a Google Gemini API key to chat! Please set GOOGLE_GEMINI_API_KEY and restart the server."

type IChatService interface {
	Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	responder     *advisor.Responder
	contextRepo   *memory.ContextRepository
	sysLogger     logger.ILogger
	llmConfigured bool
}

func NewChatService(
	responder *advisor.Responder,
	contextRepo *memory.ContextRepository,
	sysLogger logger.ILogger,
	llmConfigured bool,
) IChatService {
	return &chatService{
		responder:     responder,
		contextRepo:   contextRepo,
		sysLogger:     sysLogger,
		llmConfigured: llmConfigured,
	}
}

// Chat answers an auditor question against the report context. LLM failures
// surface as text inside the response; this method only errors on transport
// level problems upstream of the responder.
func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest) (*dto.ChatResponse, error) {
	if !s.llmConfigured {
		return &dto.ChatResponse{Response: missingKeyReply}, nil
	}

	cc := s.resolveContext(req)
	answer := s.responder.Ask(ctx, req.Question, cc)

	return &dto.ChatResponse{Response: answer}, nil
}

// resolveContext prefers inline context from the request body, then the
// cached context of a prior analysis. A nil context is valid: the responder
// answers with placeholders.
func (s *chatService) resolveContext(req *dto.ChatRequest) *advisor.ChatContext {
	if req.Context != nil {
		return &advisor.ChatContext{
			Metadata:    req.Context.Metadata,
			Scores:      req.Context.Scores,
			DatasetType: req.Context.DatasetType,
			Analysis:    req.Context.Analysis,
		}
	}

	if req.ReportId != nil {
		if cc, found := s.contextRepo.Get(req.ReportId.String()); found {
			return cc
		}
		s.sysLogger.Warn("chat", "No cached context for report", map[string]interface{}{
			"report_id": req.ReportId.String(),
		})
	}

	return nil
}
