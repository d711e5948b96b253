package repositories

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
)

// ExamRepository handles exam definitions.
type ExamRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	GetByID(ctx context.Context, id uint) (*models.Exam, error)
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters ExamFilters) ([]*models.Exam, int64, error)
	HasResults(ctx context.Context, id uint) (bool, error)
}

// AssignmentRepository handles (exam, user) assignment rows.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.ExamAssignment) error
	// Get returns nil, nil when no assignment row exists.
	Get(ctx context.Context, examID uint, userID string) (*models.ExamAssignment, error)
	Delete(ctx context.Context, examID uint, userID string) error
	ListByExam(ctx context.Context, examID uint) ([]*models.ExamAssignment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.ExamAssignment, error)
	Exists(ctx context.Context, examID uint, userID string) (bool, error)
}

// UserRepository is the thin read surface the engine needs over user records;
// full user CRUD lives outside this service.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
