package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/quizchain/solver-service/internal/cache"
	"github.com/quizchain/solver-service/internal/config"
	"github.com/quizchain/solver-service/internal/events"
	"github.com/quizchain/solver-service/internal/fetch"
	"github.com/quizchain/solver-service/internal/llm"
	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/repositories"
	"github.com/quizchain/solver-service/internal/solver"
	"github.com/quizchain/solver-service/internal/utils"
)

const eventSource = "solver-service"

// ChainService exposes chain runs to the HTTP layer and fans results out to
// the optional collaborators (store, status cache, event publisher).
type ChainService interface {
	// VerifyCredentials does an exact string match against the configured pair.
	VerifyCredentials(email, secret string) bool

	// StartChain launches a chain in the background and returns its session ID
	// immediately.
	StartChain(email, secret, url string) string

	// RunOnceSync executes exactly one fetch/answer/submit cycle inline and
	// returns the grader's raw response.
	RunOnceSync(ctx context.Context, email, secret, url string) (*models.GraderResponse, error)

	GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionSnapshot, error)
	GetSession(ctx context.Context, sessionID string) (*models.ChainSession, error)
	ListSessions(ctx context.Context, filters repositories.SessionFilters) ([]*models.ChainSession, int64, error)
}

type chainService struct {
	cfg       *config.Config
	renderer  fetch.Renderer
	client    *fetch.Client
	fallback  llm.Asker
	repo      repositories.SessionRepository // nil when persistence is disabled
	status    cache.StatusCache              // nil when no Redis is configured
	publisher events.Publisher
	logger    utils.Logger
}

func NewChainService(
	cfg *config.Config,
	renderer fetch.Renderer,
	client *fetch.Client,
	fallback llm.Asker,
	repo repositories.SessionRepository,
	status cache.StatusCache,
	publisher events.Publisher,
	logger utils.Logger,
) ChainService {
	return &chainService{
		cfg:       cfg,
		renderer:  renderer,
		client:    client,
		fallback:  fallback,
		repo:      repo,
		status:    status,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *chainService) VerifyCredentials(email, secret string) bool {
	return email == s.cfg.QuizEmail && secret == s.cfg.QuizSecret
}

// newDriver builds a fresh driver per run. Drivers own a random source and
// must not be shared between concurrent chains.
func (s *chainService) newDriver() *solver.Driver {
	pacer := solver.NewPacer(s.cfg.RandSeed, s.cfg.PacingEnabled, nil)
	strategy := solver.NewStrategy(s.cfg.AnswerStrategy, pacer, s.client, s.logger)

	return solver.NewDriver(s.renderer, s.client, strategy, s.fallback, pacer, s.logger, solver.Options{
		MaxAttempts:      s.cfg.MaxAttempts,
		TotalWorkTimeout: s.cfg.TotalWorkTimeout,
		MaxPayloadBytes:  s.cfg.MaxPayloadBytes,
	})
}

func (s *chainService) StartChain(email, secret, url string) string {
	sessionID := uuid.NewString()

	s.logger.Info("Starting background quiz chain",
		"session_id", sessionID,
		"email", email,
		"secret", utils.MaskSecret(secret),
		"url", url)

	// The triggering request already got its response; the chain runs on its
	// own context and its failures stay isolated from the HTTP layer.
	go s.runChain(context.Background(), sessionID, email, secret, url)

	return sessionID
}

func (s *chainService) runChain(ctx context.Context, sessionID, email, secret, url string) {
	startedAt := time.Now()

	session := &models.ChainSession{
		ID:         sessionID,
		Email:      email,
		InitialURL: url,
		Strategy:   s.cfg.AnswerStrategy,
		Status:     models.SessionRunning,
		StartedAt:  startedAt,
	}
	if s.repo != nil {
		if err := s.repo.Create(ctx, session); err != nil {
			s.logger.LogError(err, "Failed to persist session", "session_id", sessionID)
		}
	}

	s.updateSnapshot(ctx, session, url)
	s.publish(ctx, events.EventChainStarted, &events.ChainStartedEvent{
		SessionID:  sessionID,
		Email:      email,
		InitialURL: url,
		Strategy:   s.cfg.AnswerStrategy,
	})

	observer := func(sequence int, qc *models.QuizContext, outcome models.AttemptOutcome) {
		s.recordAttempt(ctx, session, sequence, qc, outcome)
	}

	result := s.newDriver().RunChain(ctx, email, secret, url, observer)

	finishedAt := time.Now()
	session.Status = result.Status
	session.AttemptsUsed = result.AttemptsUsed
	session.CorrectCount = result.CorrectCount
	session.FinishedAt = &finishedAt

	if s.repo != nil {
		if err := s.repo.Update(ctx, session); err != nil {
			s.logger.LogError(err, "Failed to finalize session", "session_id", sessionID)
		}
	}
	s.updateSnapshot(ctx, session, "")

	s.publish(ctx, events.EventChainFinished, &events.ChainFinishedEvent{
		SessionID:    sessionID,
		Status:       result.Status,
		AttemptsUsed: result.AttemptsUsed,
		CorrectCount: result.CorrectCount,
		Elapsed:      result.Elapsed.Seconds(),
	})
}

func (s *chainService) RunOnceSync(ctx context.Context, email, secret, url string) (*models.GraderResponse, error) {
	_, grader, err := s.newDriver().RunOnce(ctx, email, secret, url)
	if err != nil {
		return nil, err
	}
	return grader, nil
}

func (s *chainService) GetSessionStatus(ctx context.Context, sessionID string) (*models.SessionSnapshot, error) {
	if s.status == nil {
		return nil, ErrStatusCacheDisabled
	}
	snapshot, err := s.status.GetSnapshot(ctx, sessionID)
	if errors.Is(err, cache.ErrSnapshotNotFound) {
		return nil, ErrSessionNotFound
	}
	return snapshot, err
}

func (s *chainService) GetSession(ctx context.Context, sessionID string) (*models.ChainSession, error) {
	if s.repo == nil {
		return nil, ErrStoreDisabled
	}
	session, err := s.repo.GetByIDWithAttempts(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *chainService) ListSessions(ctx context.Context, filters repositories.SessionFilters) ([]*models.ChainSession, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrStoreDisabled
	}
	return s.repo.List(ctx, filters)
}

// recordAttempt fans one attempt outcome out to the store, the status cache
// and the event stream. Collaborator failures are logged, never propagated:
// the chain keeps its own pace.
func (s *chainService) recordAttempt(ctx context.Context, session *models.ChainSession, sequence int, qc *models.QuizContext, outcome models.AttemptOutcome) {
	session.AttemptsUsed = sequence
	if outcome.Response != nil && outcome.Response.Correct {
		session.CorrectCount++
	}

	if s.repo != nil {
		record := &models.AttemptRecord{
			SessionID: session.ID,
			Sequence:  sequence,
			URL:       outcome.URL,
			Answer:    fmt.Sprintf("%v", outcome.Answer),
			Error:     outcome.Error,
		}
		if qc != nil {
			record.TaskType = qc.TaskType
		}
		if outcome.Response != nil {
			record.Correct = outcome.Response.Correct
			if data, err := json.Marshal(outcome.Response); err == nil {
				record.Response = datatypes.JSON(data)
			}
		}
		if err := s.repo.AddAttempt(ctx, record); err != nil {
			s.logger.LogError(err, "Failed to persist attempt", "session_id", session.ID, "sequence", sequence)
		}
	}

	s.updateSnapshot(ctx, session, outcome.URL)

	if outcome.Error != "" {
		s.publish(ctx, events.EventAttemptFailed, &events.AttemptFailedEvent{
			SessionID: session.ID,
			Sequence:  sequence,
			URL:       outcome.URL,
			Error:     outcome.Error,
		})
		return
	}

	event := &events.AttemptCompletedEvent{
		SessionID: session.ID,
		Sequence:  sequence,
		URL:       outcome.URL,
		Correct:   outcome.Response != nil && outcome.Response.Correct,
	}
	if qc != nil {
		event.TaskType = qc.TaskType
	}
	if outcome.Response != nil {
		event.Reason = outcome.Response.Reason
	}
	s.publish(ctx, events.EventAttemptCompleted, event)
}

func (s *chainService) updateSnapshot(ctx context.Context, session *models.ChainSession, currentURL string) {
	if s.status == nil {
		return
	}

	snapshot := &models.SessionSnapshot{
		ID:           session.ID,
		Email:        session.Email,
		CurrentURL:   currentURL,
		Status:       session.Status,
		AttemptsUsed: session.AttemptsUsed,
		CorrectCount: session.CorrectCount,
		StartedAt:    session.StartedAt,
		UpdatedAt:    time.Now(),
	}
	if err := s.status.SetSnapshot(ctx, snapshot); err != nil {
		s.logger.LogError(err, "Failed to update session snapshot", "session_id", session.ID)
	}
}

func (s *chainService) publish(ctx context.Context, eventType events.EventType, data interface{}) {
	if s.publisher == nil {
		return
	}

	event := &events.ChainEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   "1.0",
		Data:      data,
	}
	if err := s.publisher.PublishChainEvent(ctx, event); err != nil {
		s.logger.LogError(err, "Failed to publish chain event", "event_type", string(eventType))
	}
}
