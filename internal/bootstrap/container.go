package bootstrap

import (
	"context"
	"log"
	"time"

	"construction-docs-be/internal/config"
	"construction-docs-be/internal/controller"
	"construction-docs-be/internal/handler"
	"construction-docs-be/internal/pkg/filestore"
	"construction-docs-be/internal/pkg/locker"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/internal/repository/memory"
	"construction-docs-be/internal/repository/unitofwork"
	"construction-docs-be/internal/service"
	"construction-docs-be/internal/websocket"
	"construction-docs-be/pkg/extractor"
	extractorHttp "construction-docs-be/pkg/extractor/http"
	extractorLocal "construction-docs-be/pkg/extractor/local"
	"construction-docs-be/pkg/llm/factory"

	pktNats "construction-docs-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ProjectController  controller.IProjectController
	DocumentController controller.IDocumentController
	ChatController     controller.IChatController
	AnalysisController controller.IAnalysisController

	// Background Services (Exposed for main.go to run)
	AnalysisWorkerService service.IAnalysisWorkerService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub
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

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize Extraction Adapter based on Config
	var extractAdapter extractor.Adapter
	if cfg.Extractor.Provider == "http" {
		extractAdapter = extractorHttp.NewHttpAdapter(
			cfg.Extractor.BaseURL,
			time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second,
		)
		log.Printf("[INFO] Using Extraction Adapter: HTTP (%s)", cfg.Extractor.BaseURL)
	} else {
		extractAdapter = extractorLocal.NewLocalAdapter()
		log.Printf("[INFO] Using Extraction Adapter: LOCAL")
	}

	// In-memory job tracking and per-project serialization
	jobRepo := memory.NewJobRepository()
	projectLocks := locker.NewProjectLocker()

	fileStore, err := filestore.New(cfg.App.UploadDir)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize file store: %v", err)
	}

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Keys.AnalysisTopic, pubSub)
	analysisWorkerService := service.NewAnalysisWorkerService(
		pubSub,
		cfg.Keys.AnalysisTopic,
		uowFactory,
		jobRepo,
		llmProvider,
		natsPub,
		time.Duration(cfg.Ai.RequestTimeoutSeconds)*time.Second,
		sysLogger,
	)

	projectService := service.NewProjectService(uowFactory, jobRepo, fileStore, projectLocks, natsPub, sysLogger)
	documentService := service.NewDocumentService(
		uowFactory,
		fileStore,
		extractAdapter,
		time.Duration(cfg.Extractor.TimeoutSeconds)*time.Second,
		natsPub,
		sysLogger,
	)
	chatService := service.NewChatService(
		uowFactory,
		llmProvider,
		projectLocks,
		service.ChatConfig{
			MaxContextChars: cfg.Ai.MaxContextChars,
			HistoryWindow:   cfg.Ai.HistoryWindow,
			RequestTimeout:  time.Duration(cfg.Ai.RequestTimeoutSeconds) * time.Second,
		},
		sysLogger,
	)
	analysisService := service.NewAnalysisService(uowFactory, jobRepo, publisherService, sysLogger)

	// 3.5 Notification System Infrastructure
	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery

	// Start Service (Worker)
	if natsSub != nil {
		go notifService.Start()
	}

	// Handler
	notifHandler := handler.NewNotificationHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
		ProjectController:   controller.NewProjectController(projectService),
		DocumentController:  controller.NewDocumentController(documentService),
		ChatController:      controller.NewChatController(chatService),
		AnalysisController:  controller.NewAnalysisController(analysisService),

		AnalysisWorkerService: analysisWorkerService,
	}
}
