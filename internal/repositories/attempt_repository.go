package repositories

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
)

// AttemptRepository handles attempt sessions and their question snapshots.
// Snapshots are keyed by attempt, never by exam, so two concurrent takers
// of the same exam cannot overwrite each other's question sets.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) error
	GetByID(ctx context.Context, id uint) (*models.ExamAttempt, error)
	Update(ctx context.Context, attempt *models.ExamAttempt) error

	CreateSnapshot(ctx context.Context, rows []*models.AttemptQuestion) error
	// GetSnapshot returns the snapshot ordered by position, with the bank
	// question preloaded on each row.
	GetSnapshot(ctx context.Context, attemptID uint) ([]*models.AttemptQuestion, error)

	ListByExam(ctx context.Context, examID uint, limit, offset int) ([]*models.ExamAttempt, int64, error)
}

// ResultRepository is the attempt ledger.
type ResultRepository interface {
	Create(ctx context.Context, result *models.ExamResult) error
	GetByID(ctx context.Context, id uint) (*models.ExamResult, error)
	ListByExam(ctx context.Context, examID uint, filters ResultFilters) ([]*models.ExamResult, int64, error)

	// CountMatching counts ledger rows for the exam matching ANY non-empty
	// identity key: student_id == keys.UserID OR student_id == keys.Username
	// OR student_name == keys.FullName. An empty key set counts nothing.
	CountMatching(ctx context.Context, examID uint, keys IdentityKeys) (int, error)
}
