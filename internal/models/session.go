package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SessionStatus string

const (
	SessionRunning   SessionStatus = "Running"
	SessionCompleted SessionStatus = "Completed"
	SessionFailed    SessionStatus = "Failed"
	SessionTimedOut  SessionStatus = "TimedOut"
)

// ChainSession is the persisted record of one quiz chain run. The in-memory
// session owned by the driver is authoritative while the chain runs; rows are
// written only when a session store is configured.
type ChainSession struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	Email        string        `json:"email" gorm:"not null;size:320;index"`
	InitialURL   string        `json:"initial_url" gorm:"not null;type:text"`
	Strategy     string        `json:"strategy" gorm:"size:32"`
	Status       SessionStatus `json:"status" gorm:"default:Running;index"`
	AttemptsUsed int           `json:"attempts_used" gorm:"default:0"`
	CorrectCount int           `json:"correct_count" gorm:"default:0"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Attempts []AttemptRecord `json:"attempts" gorm:"foreignKey:SessionID"`
}

// AttemptRecord is one fetch/answer/submit cycle of a persisted session.
type AttemptRecord struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SessionID string         `json:"session_id" gorm:"not null;size:36;index"`
	Sequence  int            `json:"sequence" gorm:"not null"`
	URL       string         `json:"url" gorm:"not null;type:text"`
	TaskType  TaskType       `json:"task_type" gorm:"size:32"`
	Answer    string         `json:"answer" gorm:"type:text"`
	Correct   bool           `json:"correct"`
	Response  datatypes.JSON `json:"response"`
	Error     string         `json:"error,omitempty" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
}

// SessionSnapshot is the live view of a running chain kept in the status
// cache for introspection endpoints.
type SessionSnapshot struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	CurrentURL   string        `json:"current_url"`
	Status       SessionStatus `json:"status"`
	AttemptsUsed int           `json:"attempts_used"`
	CorrectCount int           `json:"correct_count"`
	StartedAt    time.Time     `json:"started_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
