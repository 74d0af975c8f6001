package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/quizchain/solver-service/internal/models"
	"github.com/quizchain/solver-service/internal/repositories"
)

type SessionPostgreSQL struct {
	db *gorm.DB
}

func NewSessionPostgreSQL(db *gorm.DB) repositories.SessionRepository {
	return &SessionPostgreSQL{db: db}
}

// Migrate creates or updates the session tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.ChainSession{}, &models.AttemptRecord{})
}

func (s SessionPostgreSQL) Create(ctx context.Context, session *models.ChainSession) error {
	return s.db.WithContext(ctx).Create(session).Error
}

func (s SessionPostgreSQL) Update(ctx context.Context, session *models.ChainSession) error {
	return s.db.WithContext(ctx).Save(session).Error
}

func (s SessionPostgreSQL) GetByID(ctx context.Context, id string) (*models.ChainSession, error) {
	var session models.ChainSession
	if err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) GetByIDWithAttempts(ctx context.Context, id string) (*models.ChainSession, error) {
	var session models.ChainSession
	if err := s.db.WithContext(ctx).
		Preload("Attempts", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		First(&session, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s SessionPostgreSQL) List(ctx context.Context, filters repositories.SessionFilters) ([]*models.ChainSession, int64, error) {
	var sessions []*models.ChainSession
	var total int64

	query := s.db.WithContext(ctx).Model(&models.ChainSession{})
	query = s.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applySortingAndPagination(query, filters)
	if err := query.Find(&sessions).Error; err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

func (s SessionPostgreSQL) AddAttempt(ctx context.Context, attempt *models.AttemptRecord) error {
	return s.db.WithContext(ctx).Create(attempt).Error
}

func (s SessionPostgreSQL) GetAttempts(ctx context.Context, sessionID string) ([]*models.AttemptRecord, error) {
	var attempts []*models.AttemptRecord
	if err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("sequence ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (s SessionPostgreSQL) applyFilters(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	if filters.Email != "" {
		query = query.Where("email = ?", filters.Email)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("started_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("started_at <= ?", *filters.DateTo)
	}
	return query
}

func (s SessionPostgreSQL) applySortingAndPagination(query *gorm.DB, filters repositories.SessionFilters) *gorm.DB {
	sortBy := filters.SortBy
	switch sortBy {
	case "started_at", "attempts_used":
	default:
		sortBy = "started_at"
	}

	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(fmt.Sprintf("%s %s", sortBy, sortOrder))

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
