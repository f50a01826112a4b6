package bootstrap

import (
	"context"
	stdlog "log"

	"smart-triage-be/internal/config"
	"smart-triage-be/internal/controller"
	"smart-triage-be/internal/handler"
	"smart-triage-be/internal/pkg/logger"
	"smart-triage-be/internal/repository/knowledgestore"
	"smart-triage-be/internal/repository/memory"
	"smart-triage-be/internal/repository/unitofwork"
	"smart-triage-be/internal/service"
	"smart-triage-be/internal/websocket"
	"smart-triage-be/pkg/embedding"
	"smart-triage-be/pkg/embedding/jina"
	"smart-triage-be/pkg/knowledge"
	"smart-triage-be/pkg/llm/factory"
	"smart-triage-be/pkg/triage/actions"
	"smart-triage-be/pkg/triage/executor"
	"smart-triage-be/pkg/triage/state"

	pktNats "smart-triage-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	TriageController    controller.ITriageController
	KnowledgeController controller.IKnowledgeController

	// Background Services (Exposed for main.go to run)
	ConsumerService  service.IConsumerService
	PublisherService service.IPublisherService
	AuditService     *service.AuditService

	// WebSockets & Live Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	// All embedding backends implement both the single and batch contracts.
	var embeddingProvider embedding.EmbeddingProvider
	var batchProvider embedding.BatchEmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		p := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
		embeddingProvider, batchProvider = p, p
		stdlog.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	case "jina":
		p := jina.NewJinaProvider(cfg.Keys.Jina)
		embeddingProvider, batchProvider = p, p
		stdlog.Printf("[INFO] Using Embedding Provider: JINA AI")
	default:
		p := embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		embeddingProvider, batchProvider = p, p
		stdlog.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.HuggingFace,
	)
	if err != nil {
		stdlog.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	stdlog.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Knowledge Base
	chunkStore := knowledgestore.NewAdapter(uowFactory)
	pipeline := knowledge.NewPipeline(
		knowledge.NewFileExtractor(),
		batchProvider,
		chunkStore,
		knowledge.PipelineConfig{
			ChunkSize:    cfg.Knowledge.ChunkSize,
			ChunkOverlap: cfg.Knowledge.ChunkOverlap,
			BatchSize:    cfg.Knowledge.BatchSize,
		},
		stdlog.Default(),
	)
	retriever := knowledge.NewService(embeddingProvider, chunkStore, stdlog.Default())

	// 5. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		stdlog.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		stdlog.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		pipeline,
		cfg.Knowledge,
	)

	machine := state.NewMachine(stdlog.Default())
	registry := executor.NewRegistry(
		executor.NewInterview(llmProvider, stdlog.Default()),
		executor.NewReasoning(llmProvider, retriever, stdlog.Default()),
		executor.NewExecution(actions.NewMockServices(), stdlog.Default()),
		executor.NewDocumentation(stdlog.Default()),
	)

	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	triageService := service.NewTriageService(
		uowFactory,
		machine,
		registry,
		memory.NewQuestionStateRepository(),
		memory.NewSessionRepository(),
		eventPublisher,
		wsHub,
		sysLogger,
	)
	knowledgeService := service.NewKnowledgeService(pipeline, retriever, cfg.Knowledge, sysLogger)

	var auditService *service.AuditService
	if natsSub != nil {
		auditService = service.NewAuditService(natsSub, logger.NewIsolatedLogger("logs/audit.log"))
	}

	// 7. Controllers & Handlers
	return &Container{
		TriageController:    controller.NewTriageController(triageService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),

		ConsumerService:  consumerService,
		PublisherService: publisherService,
		AuditService:     auditService,

		ProgressHandler: handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,
	}
}
