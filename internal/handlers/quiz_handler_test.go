package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizchain/solver-service/internal/config"
	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/repositories"
	"github.com/quizchain/solver-service/internal/utils"
	"github.com/quizchain/solver-service/internal/validator"
)

func testLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testConfig() *config.Config {
	return &config.Config{
		QuizEmail:        "solver@example.com",
		QuizSecret:       "initial-secret",
		TotalWorkTimeout: 150 * time.Second,
		HTTPTimeout:      30 * time.Second,
		MaxAttempts:      5,
		MaxPayloadBytes:  1 << 20,
		AnswerStrategy:   "heuristic",
		Renderer:         "http",
	}
}

// stubChainService scripts every ChainService response for handler tests.
type stubChainService struct {
	cfg *config.Config

	startedURLs []string
	grader      *models.GraderResponse
	graderErr   error
	snapshot    *models.SessionSnapshot
	snapshotErr error
	session     *models.ChainSession
	sessionErr  error
	listErr     error
	lastFilters repositories.SessionFilters
}

func (s *stubChainService) VerifyCredentials(email, secret string) bool {
	return email == s.cfg.QuizEmail && secret == s.cfg.QuizSecret
}

func (s *stubChainService) StartChain(email, secret, url string) string {
	s.startedURLs = append(s.startedURLs, url)
	return "session-123"
}

func (s *stubChainService) RunOnceSync(context.Context, string, string, string) (*models.GraderResponse, error) {
	return s.grader, s.graderErr
}

func (s *stubChainService) GetSessionStatus(context.Context, string) (*models.SessionSnapshot, error) {
	return s.snapshot, s.snapshotErr
}

func (s *stubChainService) GetSession(context.Context, string) (*models.ChainSession, error) {
	return s.session, s.sessionErr
}

func (s *stubChainService) ListSessions(_ context.Context, filters repositories.SessionFilters) ([]*models.ChainSession, int64, error) {
	s.lastFilters = filters
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return []*models.ChainSession{}, 0, nil
}

type stubExportService struct {
	data []byte
	err  error
}

func (s *stubExportService) ExportSessionResults(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

func newTestRouter(svc *stubChainService, export *stubExportService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	hm := NewHandlerManager(svc, export, validator.New(), svc.cfg, testLogger())
	hm.SetupRoutes(router)
	return router
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func validBody() string {
	return `{"email":"solver@example.com","secret":"initial-secret","url":"http://quiz.example.com/q/1"}`
}

func TestSolveQuiz_StartsChain(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/quiz", validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "started", body["status"])
	assert.Equal(t, "session-123", body["session_id"])
	assert.Equal(t, "http://quiz.example.com/q/1", body["initial_url"])
	assert.Equal(t, float64(150), body["timeout_seconds"])
	assert.Equal(t, []string{"http://quiz.example.com/q/1"}, svc.startedURLs)
}

func TestSolveQuiz_MalformedJSON(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/quiz", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
	assert.Empty(t, svc.startedURLs)
}

func TestSolveQuiz_ValidationFailures(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{}`},
		{"bad email", `{"email":"not-an-email","secret":"s","url":"http://q/1"}`},
		{"relative url", `{"email":"solver@example.com","secret":"initial-secret","url":"/q/1"}`},
		{"bad scheme", `{"email":"solver@example.com","secret":"initial-secret","url":"ftp://q/1"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChainService{cfg: testConfig()}
			router := newTestRouter(svc, &stubExportService{})

			w := doRequest(router, http.MethodPost, "/quiz", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "Validation failed")
			assert.Empty(t, svc.startedURLs)
		})
	}
}

func TestSolveQuiz_CredentialMismatch(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/quiz",
		`{"email":"other@example.com","secret":"nope","url":"http://quiz.example.com/q/1"}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	var body CredentialErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid credentials", body.Error)
	assert.Equal(t, "solver@example.com", body.ExpectedEmail)
	assert.Equal(t, "other@example.com", body.ReceivedEmail)
	assert.NotEmpty(t, body.Hint)
	assert.Empty(t, svc.startedURLs)
}

func TestSolveQuizSync_ReturnsGraderResponse(t *testing.T) {
	svc := &stubChainService{
		cfg:    testConfig(),
		grader: &models.GraderResponse{Correct: true, URL: "http://quiz.example.com/q/2"},
	}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/quiz-sync", validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var grader models.GraderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &grader))
	assert.True(t, grader.Correct)
	assert.Equal(t, "http://quiz.example.com/q/2", grader.URL)
}

func TestSolveQuizSync_FailureIsBadRequest(t *testing.T) {
	svc := &stubChainService{
		cfg:       testConfig(),
		graderErr: assert.AnError,
	}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/quiz-sync", validBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Quiz processing failed")
}

func TestTestCredentials(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodPost, "/test", validBody())
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, true, body["secret_match"])
}

func TestStatusEndpoints(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	for _, path := range []string{"/", "/health"} {
		w := doRequest(router, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, w.Code, "path %s", path)

		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, true, body["email_configured"])
		assert.Equal(t, true, body["secret_configured"])
	}
}

func TestDebugConfig_NeverEchoesSecret(t *testing.T) {
	svc := &stubChainService{cfg: testConfig()}
	router := newTestRouter(svc, &stubExportService{})

	w := doRequest(router, http.MethodGet, "/debug", "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.NotContains(t, w.Body.String(), "initial-secret")

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(len("initial-secret")), body["expected_secret_length"])
	assert.Equal(t, "heuristic", body["answer_strategy"])
}
