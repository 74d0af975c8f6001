package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/quizchain/solver-service/internal/repositories"
	"github.com/quizchain/solver-service/internal/utils"
)

// ExportService renders a session's attempt history as a spreadsheet.
type ExportService interface {
	ExportSessionResults(ctx context.Context, sessionID string) ([]byte, error)
}

type exportService struct {
	repo   repositories.SessionRepository
	logger utils.Logger
}

func NewExportService(repo repositories.SessionRepository, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

func (s *exportService) ExportSessionResults(ctx context.Context, sessionID string) ([]byte, error) {
	if s.repo == nil {
		return nil, ErrStoreDisabled
	}

	session, err := s.repo.GetByIDWithAttempts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Attempts"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Sequence", "URL", "Task Type", "Answer", "Correct", "Error", "Submitted At",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range session.Attempts {
		row := []interface{}{
			attempt.Sequence,
			attempt.URL,
			string(attempt.TaskType),
			attempt.Answer,
			attempt.Correct,
			attempt.Error,
			attempt.CreatedAt.Format(time.RFC3339),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported session results",
		"session_id", sessionID,
		"attempts", len(session.Attempts))

	return buf.Bytes(), nil
}
