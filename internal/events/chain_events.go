package events

import (
	"time"

	"github.com/quizchain/solver-service/internal/models"
)

// EventType represents different types of chain lifecycle events
type EventType string

const (
	EventChainStarted  EventType = "chain.started"
	EventChainFinished EventType = "chain.finished"

	EventAttemptCompleted EventType = "attempt.completed"
	EventAttemptFailed    EventType = "attempt.failed"
)

// ChainEvent is the base event structure for all chain lifecycle events
type ChainEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ChainStartedEvent struct {
	SessionID  string `json:"session_id"`
	Email      string `json:"email"`
	InitialURL string `json:"initial_url"`
	Strategy   string `json:"strategy"`
}

type AttemptCompletedEvent struct {
	SessionID string          `json:"session_id"`
	Sequence  int             `json:"sequence"`
	URL       string          `json:"url"`
	TaskType  models.TaskType `json:"task_type"`
	Correct   bool            `json:"correct"`
	Reason    string          `json:"reason,omitempty"`
}

type AttemptFailedEvent struct {
	SessionID string `json:"session_id"`
	Sequence  int    `json:"sequence"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

type ChainFinishedEvent struct {
	SessionID    string               `json:"session_id"`
	Status       models.SessionStatus `json:"status"`
	AttemptsUsed int                  `json:"attempts_used"`
	CorrectCount int                  `json:"correct_count"`
	Elapsed      float64              `json:"elapsed_seconds"`
}
