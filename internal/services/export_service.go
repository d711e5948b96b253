package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

// ExportService renders an exam's result ledger to a spreadsheet for
// administrators. Reads only; permission-gated like any results view.
type ExportService interface {
	ExportResults(ctx context.Context, actor *models.Identity, examID uint) ([]byte, string, error)
}

type exportService struct {
	repo   repositories.Repository
	perms  PermissionService
	logger utils.Logger
}

func NewExportService(repo repositories.Repository, perms PermissionService, logger utils.Logger) ExportService {
	return &exportService{
		repo:   repo,
		perms:  perms,
		logger: logger,
	}
}

var resultExportHeader = []interface{}{
	"Attempt #", "Student ID", "Student Name", "Score", "Correct", "Total Questions", "Time Spent (s)", "Completed At",
}

// ExportResults returns the xlsx bytes and a suggested filename.
func (s *exportService) ExportResults(ctx context.Context, actor *models.Identity, examID uint) ([]byte, string, error) {
	if err := s.perms.Require(ctx, actor, PermExamResultsView, "exam", "export_results"); err != nil {
		return nil, "", err
	}

	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrExamNotFound
		}
		return nil, "", fmt.Errorf("failed to get exam: %w", err)
	}

	results, _, err := s.repo.Result().ListByExam(ctx, examID, repositories.ResultFilters{})
	if err != nil {
		return nil, "", fmt.Errorf("failed to list results: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := "Results"
	file.SetSheetName(file.GetSheetName(0), sheet)

	if err := file.SetSheetRow(sheet, "A1", &resultExportHeader); err != nil {
		return nil, "", fmt.Errorf("failed to write export header: %w", err)
	}

	for i, result := range results {
		row := []interface{}{
			result.AttemptNumber,
			result.StudentID,
			result.StudentName,
			result.Score,
			result.CorrectAnswers,
			result.TotalQuestions,
			result.TimeSpent,
			result.CompletedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("failed to write export row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to render export: %w", err)
	}

	filename := fmt.Sprintf("exam-%d-results-%s.xlsx", exam.ID, time.Now().Format("20060102"))

	s.logger.Info("exam results exported",
		"exam_id", examID,
		"rows", len(results),
		"exported_by", actor.UserID)

	return buf.Bytes(), filename, nil
}
