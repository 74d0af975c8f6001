package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizchain/solver-service/internal/config"
	"github.com/quizchain/solver-service/internal/services"
	"github.com/quizchain/solver-service/internal/utils"
	"github.com/quizchain/solver-service/internal/validator"
)

type QuizHandler struct {
	BaseHandler
	chainService services.ChainService
	validator    *validator.Validator
	cfg          *config.Config
}

// QuizRequest is the body of /quiz, /quiz-sync and /test.
type QuizRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"secret" validate:"required"`
	URL    string `json:"url" validate:"required,quiz_url"`
}

func NewQuizHandler(
	chainService services.ChainService,
	validator *validator.Validator,
	cfg *config.Config,
	logger utils.Logger,
) *QuizHandler {
	return &QuizHandler{
		BaseHandler:  NewBaseHandler(logger),
		chainService: chainService,
		validator:    validator,
		cfg:          cfg,
	}
}

// bindAndVerify parses the request body, validates it and checks credentials.
// It writes the response itself on failure and returns nil.
func (h *QuizHandler) bindAndVerify(c *gin.Context) *QuizRequest {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return nil
	}

	if err := h.validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
		return nil
	}

	if !h.chainService.VerifyCredentials(req.Email, req.Secret) {
		h.logger.Warn("Credential mismatch",
			"expected_email", h.cfg.QuizEmail,
			"received_email", req.Email,
			"received_secret", utils.MaskSecret(req.Secret))
		c.JSON(http.StatusForbidden, CredentialErrorResponse{
			Error:         "Invalid credentials",
			ExpectedEmail: h.cfg.QuizEmail,
			ReceivedEmail: req.Email,
			Hint:          "Check your .env file matches the registered credentials",
		})
		return nil
	}

	return &req
}

// SolveQuiz starts the quiz chain as background work and acknowledges
// immediately. The chain's outcome is observable through the session routes.
func (h *QuizHandler) SolveQuiz(c *gin.Context) {
	req := h.bindAndVerify(c)
	if req == nil {
		return
	}

	h.LogRequest(c, "Starting quiz chain", "email", req.Email, "url", req.URL)

	sessionID := h.chainService.StartChain(req.Email, req.Secret, req.URL)

	c.JSON(http.StatusOK, gin.H{
		"status":          "started",
		"message":         "Quiz processing started",
		"session_id":      sessionID,
		"initial_url":     req.URL,
		"email":           req.Email,
		"timeout_seconds": int(h.cfg.TotalWorkTimeout.Seconds()),
	})
}

// SolveQuizSync runs exactly one fetch/answer/submit cycle inline and returns
// the grader's raw response.
func (h *QuizHandler) SolveQuizSync(c *gin.Context) {
	req := h.bindAndVerify(c)
	if req == nil {
		return
	}

	h.LogRequest(c, "Processing quiz synchronously", "email", req.Email, "url", req.URL)

	grader, err := h.chainService.RunOnceSync(c.Request.Context(), req.Email, req.Secret, req.URL)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Quiz processing failed", err, err.Error())
		return
	}

	c.JSON(http.StatusOK, grader)
}

// TestCredentials verifies the credential pair and does nothing else.
func (h *QuizHandler) TestCredentials(c *gin.Context) {
	req := h.bindAndVerify(c)
	if req == nil {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"message":      "Credentials verified - API is working",
		"email":        req.Email,
		"secret_match": true,
	})
}

// Root reports service status and which collaborators are configured.
func (h *QuizHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "Quiz chain solver API",
		"email_configured":  h.cfg.QuizEmail != "",
		"secret_configured": h.cfg.QuizSecret != "",
		"openai_configured": h.cfg.OpenAIKey != "",
		"timeout_seconds":   int(h.cfg.TotalWorkTimeout.Seconds()),
	})
}

// HealthCheck is the liveness endpoint.
func (h *QuizHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"email_configured":  h.cfg.QuizEmail != "",
		"secret_configured": h.cfg.QuizSecret != "",
		"openai_configured": h.cfg.OpenAIKey != "",
	})
}

// DebugConfig surfaces the effective configuration. The secret itself is
// never echoed, only its length.
func (h *QuizHandler) DebugConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"expected_email":        h.cfg.QuizEmail,
		"expected_email_length": len(h.cfg.QuizEmail),
		"expected_secret_length": len(h.cfg.QuizSecret),
		"openai_key_configured": h.cfg.OpenAIKey != "",
		"total_timeout_seconds": int(h.cfg.TotalWorkTimeout.Seconds()),
		"http_timeout_seconds":  int(h.cfg.HTTPTimeout.Seconds()),
		"browser_nav_timeout_seconds": int(h.cfg.BrowserNavTimeout.Seconds()),
		"max_attempts":          h.cfg.MaxAttempts,
		"max_payload_bytes":     h.cfg.MaxPayloadBytes,
		"answer_strategy":       h.cfg.AnswerStrategy,
		"renderer":              h.cfg.Renderer,
		"pacing_enabled":        h.cfg.PacingEnabled,
		"store_configured":      h.cfg.DatabaseURL != "",
		"status_cache_configured": h.cfg.RedisURL != "",
		"events_enabled":        h.cfg.Events.Enabled,
	})
}
