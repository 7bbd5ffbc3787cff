package bootstrap

import (
	"context"
	"log"
	"time"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/handler"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/internal/websocket"
	"ai-chatbot-be/pkg/attachment"
	"ai-chatbot-be/pkg/blobstore"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"
	"ai-chatbot-be/pkg/urlcache"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const attachmentTopic = "attachment.uploaded"

type Container struct {
	// Controllers
	AuthController controller.IAuthController
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

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

	// 3. Object Storage
	store, err := blobstore.NewMinioStore(blobstore.MinioConfig{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize object storage: %v", err)
	}
	uploader := attachment.NewUploader(store)

	// 4. Redis (websocket fan-out + optional cache backend)
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		rdb = nil
	}
	cancel()

	// 5. Signed URL Cache
	var urlCache urlcache.Cache
	if cfg.Cache.Backend == "redis" && rdb != nil {
		urlCache = urlcache.NewRedisCache(rdb)
		log.Printf("[INFO] Using Signed URL Cache: REDIS")
	} else {
		urlCache = urlcache.NewMemoryCache(cfg.Cache.SweepInterval)
		log.Printf("[INFO] Using Signed URL Cache: MEMORY")
	}

	// 6. LLM Providers
	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var visionProvider llm.VisionProvider
	if cfg.Ai.VisionModel != "" {
		vp, err := factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.VisionModel,
			llmBaseURL,
			cfg.Ai.OpenAIAPIKey,
		)
		if err != nil {
			log.Printf("[WARN] Failed to initialize vision provider: %v", err)
		} else if v, ok := vp.(llm.VisionProvider); ok {
			visionProvider = v
			log.Printf("[INFO] Using Vision Model: %s", cfg.Ai.VisionModel)
		}
	}

	// 7. WebSocket Hub
	wsLogger := logger.NewZapLogger("logs/notification.log", cfg.App.Environment == "production")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 8. Services
	publisherService := service.NewPublisherService(attachmentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		attachmentTopic,
		uowFactory,
		store,
		visionProvider,
	)

	authService := service.NewAuthService(uowFactory, cfg.App.JwtSecret)
	attachmentService := service.NewAttachmentService(uowFactory, store, urlCache, cfg.Cache.SignedURLTTL)
	chatroomService := service.NewChatroomService(uowFactory, store, urlCache, wsHub, sysLogger)
	chatService := service.NewChatService(
		uowFactory,
		uploader,
		llmProvider,
		visionProvider,
		publisherService,
		wsHub,
		sysLogger,
	)

	// 9. Handlers & Controllers
	notifHandler := handler.NewNotificationHandler(wsHub, cfg.App.JwtSecret, wsLogger)

	return &Container{
		AuthController:      controller.NewAuthController(authService),
		ChatController:      controller.NewChatController(chatService, chatroomService, attachmentService),
		ConsumerService:     consumerService,
		NotificationHandler: notifHandler,
		WebSocketHub:        wsHub,
	}
}
