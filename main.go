package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"agriqa/config"
	"agriqa/controller"
	"agriqa/logger"
	"agriqa/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	zlog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zlog.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dataset registry and trusted-source catalog: built-ins, optionally
	// overridden by a YAML file that is watched for changes.
	registry := config.DefaultRegistry()
	if path := cfg.RegistryFile(); path != "" {
		registry, err = config.LoadRegistryFile(path)
		if err != nil {
			zlog.Fatal("failed to load registry file", zap.String("path", path), zap.Error(err))
		}
	}
	registryStore := config.NewRegistryStore(registry)
	if path := cfg.RegistryFile(); path != "" {
		go registryStore.Watch(ctx, path, zlog)
	}

	// Redis backs the chat history.
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		zlog.Fatal("failed to connect to redis", zap.String("address", cfg.Redis.Address), zap.Error(err))
	}
	zlog.Info("connected to redis", zap.String("address", cfg.Redis.Address))

	// Create Gemini client.
	geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		zlog.Fatal("failed to create gemini client, make sure GEMINI_API_KEY is set", zap.Error(err))
	}
	zlog.Info("connected to google gemini", zap.String("model", cfg.Gemini.Model))

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	matcher := services.NewDatasetMatcher(services.DefaultKeywords(), services.DefaultGateTerms())
	fetcher := services.NewDataFetcher(httpClient, cfg.DataGov, zlog)
	aggregator := services.NewSourceAggregator(registryStore, services.DefaultTopicRules())
	generator := services.NewGeminiGenerator(geminiClient, cfg.Gemini.Model)
	composer := services.NewAnswerComposer(generator, aggregator, zlog)
	history := services.NewRedisHistoryStore(redisClient)

	queryService := services.NewQueryService(matcher, fetcher, composer, history, registryStore, cfg.DataGov.FetchLimit, zlog)
	chatController := controller.NewChatController(queryService)

	// Setup Gin router.
	router := gin.Default()
	router.Use(corsMiddleware(cfg.Server.CORSOrigins))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/", chatController.Root)
		api.GET("/health", chatController.Health)
		api.GET("/datasets", chatController.ListDatasets)

		chat := api.Group("/chat")
		{
			chat.POST("/query", chatController.SubmitQuery)
			chat.GET("/history/:sessionId", chatController.GetHistory)
		}
	}

	zlog.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		zlog.Fatal("failed to start server", zap.Error(err))
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	allowed := strings.Join(origins, ",")
	if allowed == "" {
		allowed = "*"
	}
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
