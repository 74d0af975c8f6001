package repositories

import (
	"context"
	"time"

	"github.com/quizchain/solver-service/internal/models"
)

// SessionFilters narrows session listings.
type SessionFilters struct {
	Email     string                `json:"email"`
	Status    *models.SessionStatus `json:"status"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "started_at", "attempts_used"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

// SessionRepository persists chain sessions and their attempt records.
// Persistence is optional at runtime: callers hold a nil interface when no
// database is configured and skip the calls.
type SessionRepository interface {
	Create(ctx context.Context, session *models.ChainSession) error
	Update(ctx context.Context, session *models.ChainSession) error
	GetByID(ctx context.Context, id string) (*models.ChainSession, error)
	GetByIDWithAttempts(ctx context.Context, id string) (*models.ChainSession, error)
	List(ctx context.Context, filters SessionFilters) ([]*models.ChainSession, int64, error)

	AddAttempt(ctx context.Context, attempt *models.AttemptRecord) error
	GetAttempts(ctx context.Context, sessionID string) ([]*models.AttemptRecord, error)
}
