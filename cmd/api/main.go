package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"leanbot-chat/internal/config"
	apihttp "leanbot-chat/internal/http"
	"leanbot-chat/internal/service"
	"leanbot-chat/internal/webhook"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	client := webhook.NewHTTPClient(cfg.WebhookURL, cfg.WebhookTimeout, logger)

	// Con Redis disponible el limiter sobrevive reinicios y sirve varias
	// réplicas; si no, cada sesión usa su ventana en memoria.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, falling back to in-memory rate limiting", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	newLimiter := func(sessionID string) service.Admitter {
		if redisClient != nil {
			return service.NewRedisRateLimiter(redisClient, cfg.RateLimitWindow, cfg.RateLimitMax, sessionID)
		}
		return service.NewSlidingWindowLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	}

	registry := service.NewSessionRegistry(func(sessionID string) *service.ChatService {
		return service.NewChatService(
			logger,
			client,
			newLimiter(sessionID),
			service.NewConversationStore(),
			nil,
			sessionID,
		)
	})

	chatHandler := apihttp.NewChatHandler(logger, registry)
	wsHandler := apihttp.NewWSHandler(logger, registry, apihttp.RevealOptions{
		Enabled:   cfg.RevealEnabled,
		ChunkSize: cfg.RevealChunkSize,
		Delay:     cfg.RevealDelay,
	})
	router := apihttp.NewRouter(logger, chatHandler, wsHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
