package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/talha309/multiuser-ai-assistant/internal/config"
	"github.com/talha309/multiuser-ai-assistant/internal/db"
	apihttp "github.com/talha309/multiuser-ai-assistant/internal/http"
	"github.com/talha309/multiuser-ai-assistant/internal/llm"
	"github.com/talha309/multiuser-ai-assistant/internal/repository"
	"github.com/talha309/multiuser-ai-assistant/internal/search"
	"github.com/talha309/multiuser-ai-assistant/internal/service"
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

	if cfg.UsesInsecureSecret() {
		logger.Warn("SECRET_KEY not set, using insecure development secret")
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	threadRepo := repository.NewPgThreadRepository(pool)
	messageRepo := repository.NewPgMessageRepository(pool)

	searchClient := search.NewHTTPClient(cfg.TavilyBaseURL, cfg.TavilyAPIKey, logger)
	generator := llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, logger)

	var rateLimiter service.LoginRateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			rateLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 10)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.SecretKey, time.Duration(cfg.AccessTokenExpires)*time.Minute)
	authSvc := service.NewAuthService(logger, userRepo, jwtSvc, rateLimiter)
	pipeline := service.NewConversationPipeline(logger, messageRepo, searchClient, generator)

	authHandler := apihttp.NewAuthHandler(logger, authSvc)
	chatHandler := apihttp.NewChatHandler(logger, threadRepo, messageRepo, pipeline)
	router := apihttp.NewRouter(logger, pool, authSvc, authHandler, chatHandler)

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
