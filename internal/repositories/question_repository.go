package repositories

import (
	"context"

	"github.com/trainhub/exam-service/internal/models"
)

// QuestionRepository handles the shared question bank.
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)

	// GetAll returns the full candidate pool the sampler draws from.
	GetAll(ctx context.Context) ([]*models.Question, error)
	Count(ctx context.Context) (int64, error)

	// InUse reports whether any attempt snapshot references the question.
	InUse(ctx context.Context, id uint) (bool, error)
}
