package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"finaudit-be/internal/config"
	"finaudit-be/internal/controller"
	"finaudit-be/internal/pkg/logger"
	"finaudit-be/internal/repository/implementation"
	"finaudit-be/internal/repository/memory"
	"finaudit-be/internal/service"
	"finaudit-be/pkg/advisor"
	"finaudit-be/pkg/advisor/gateway"
	"finaudit-be/pkg/embedding"
	"finaudit-be/pkg/grounding"
	"finaudit-be/pkg/llm"
	"finaudit-be/pkg/llm/factory"
	"finaudit-be/pkg/llm/gemini"
	"finaudit-be/pkg/provenance"
)

type Container struct {
	// Controllers
	AuditController controller.IAuditController
	ChatController  controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbedModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	// The server still runs without a credential: the analyze flow degrades
	// to the skipped-analysis placeholder and chat returns a fixed message.
	llmConfigured := cfg.Ai.LLMProvider == "ollama" || cfg.Keys.GoogleGemini != ""

	var llmProvider llm.LLMProvider
	if llmConfigured {
		var err error
		llmProvider, err = factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.LLMModel,
			cfg.Ai.OllamaBaseURL,
			cfg.Keys.GoogleGemini,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	} else {
		log.Printf("[WARN] GOOGLE_GEMINI_API_KEY not set, AI analysis and chat disabled")
		llmProvider = gemini.NewGeminiProvider("", cfg.Ai.LLMModel)
	}

	completionGateway := gateway.New(llmProvider, gateway.Config{
		FallbackURL:  cfg.Ai.FallbackURL,
		RapidAPIKey:  cfg.Keys.RapidAPI,
		RapidAPIHost: cfg.Ai.FallbackHost,
	})
	pipeline := advisor.NewPipeline(completionGateway)
	responder := advisor.NewResponder(completionGateway)
	groundingBuilder := grounding.NewBuilder(embeddingProvider)

	// 4. Provenance
	provenanceService, err := provenance.NewService(cfg.Provenance.KeyDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize provenance keys: %v", err)
	}

	// 5. Repositories
	reportRepo := implementation.NewAuditReportRepository(db)
	contextRepo := memory.NewContextRepository()

	// 6. Services
	auditService := service.NewAuditService(
		reportRepo,
		contextRepo,
		pipeline,
		provenanceService,
		pubSub,
		cfg.Events.AuditCompletedTopic,
		sysLogger,
		llmConfigured,
	)
	chatService := service.NewChatService(
		responder,
		contextRepo,
		sysLogger,
		llmConfigured,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Events.AuditCompletedTopic,
		contextRepo,
		groundingBuilder,
	)

	// 7. Controllers
	return &Container{
		AuditController: controller.NewAuditController(auditService),
		ChatController:  controller.NewChatController(chatService),

		ConsumerService: consumerService,
	}
}
