package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizchain/solver-service/internal/cache"
	"github.com/quizchain/solver-service/internal/config"
	"github.com/quizchain/solver-service/internal/fetch"
	"github.com/quizchain/solver-service/internal/handlers"
	"github.com/quizchain/solver-service/internal/llm"
	"github.com/quizchain/solver-service/internal/repositories"
	"github.com/quizchain/solver-service/internal/repositories/postgres"
	"github.com/quizchain/solver-service/internal/services"
	"github.com/quizchain/solver-service/internal/utils"
	"github.com/quizchain/solver-service/internal/validator"
	"github.com/quizchain/solver-service/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewDefaultLogger().Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	logger.Info("Configuration loaded",
		"email", cfg.QuizEmail,
		"secret", utils.MaskSecret(cfg.QuizSecret),
		"openai_configured", cfg.OpenAIKey != "",
		"total_timeout", cfg.TotalWorkTimeout.String(),
		"http_timeout", cfg.HTTPTimeout.String(),
		"strategy", cfg.AnswerStrategy,
		"renderer", cfg.Renderer)

	client := fetch.NewClient(cfg.HTTPTimeout)

	var renderer fetch.Renderer
	if cfg.Renderer == "chrome" {
		renderer = fetch.NewChromeRenderer(cfg.BrowserNavTimeout)
	} else {
		renderer = fetch.NewHTTPRenderer(client)
	}

	var fallback llm.Asker
	if asker := llm.NewOpenAIAsker(cfg.OpenAIKey, cfg.OpenAIModel); asker != nil {
		fallback = asker
		logger.Info("LLM answer fallback enabled", "model", cfg.OpenAIModel)
	}

	var repo repositories.SessionRepository
	if cfg.DatabaseURL != "" {
		db, err := pkg.InitDatabase(cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := postgres.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			os.Exit(1)
		}
		repo = postgres.NewSessionPostgreSQL(db)
		logger.Info("Session store enabled")
	}

	var status cache.StatusCache
	if cfg.RedisURL != "" {
		redisClient, err := pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		status = cache.NewRedisStatusCache(redisClient, logger)
		logger.Info("Session status cache enabled")
	}

	publisher, err := cfg.Events.CreateEventPublisher(utils.ToSlogLogger(logger))
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	chainService := services.NewChainService(cfg, renderer, client, fallback, repo, status, publisher, logger)
	exportService := services.NewExportService(repo, logger)

	v := validator.New()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(chainService, exportService, v, cfg, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}
