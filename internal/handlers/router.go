package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/quizchain/solver-service/internal/config"
	"github.com/quizchain/solver-service/internal/services"
	"github.com/quizchain/solver-service/internal/utils"
	"github.com/quizchain/solver-service/internal/validator"
)

type HandlerManager struct {
	quizHandler    *QuizHandler
	sessionHandler *SessionHandler
}

func NewHandlerManager(
	chainService services.ChainService,
	exportService services.ExportService,
	validator *validator.Validator,
	cfg *config.Config,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		quizHandler:    NewQuizHandler(chainService, validator, cfg, logger),
		sessionHandler: NewSessionHandler(chainService, exportService, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Status and introspection
	router.GET("/", hm.quizHandler.Root)
	router.GET("/health", hm.quizHandler.HealthCheck)
	router.GET("/debug", hm.quizHandler.DebugConfig)

	// Quiz solving
	router.POST("/quiz", hm.quizHandler.SolveQuiz)
	router.POST("/quiz-sync", hm.quizHandler.SolveQuizSync)
	router.POST("/test", hm.quizHandler.TestCredentials)

	// Session history and live status
	sessions := router.Group("/sessions")
	{
		sessions.GET("", hm.sessionHandler.ListSessions)
		sessions.GET("/:id", hm.sessionHandler.GetSession)
		sessions.GET("/:id/status", hm.sessionHandler.GetSessionStatus)
		sessions.GET("/:id/export", hm.sessionHandler.ExportSession)
	}
}
