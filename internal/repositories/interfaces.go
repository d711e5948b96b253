package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/trainhub/exam-service/internal/models"
	"gorm.io/gorm"
)

// Repository bundles the per-entity repositories behind one handle so
// services can run several of them inside a single transaction.
type Repository interface {
	Exam() ExamRepository
	Assignment() AssignmentRepository
	Question() QuestionRepository
	Attempt() AttemptRepository
	Result() ResultRepository
	Permission() PermissionRepository
	User() UserRepository

	// WithTransaction runs fn against a transactional view of every
	// repository; fn returning an error rolls the whole batch back.
	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// IsNotFoundError reports whether err is the store's row-missing condition,
// keeping gorm out of the service layer.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ===== SHARED FILTER STRUCTS =====

type ExamFilters struct {
	IsActive  *bool      `json:"is_active"`
	IsPublic  *bool      `json:"is_public"`
	CreatedBy *string    `json:"created_by"`
	OpenAt    *time.Time `json:"open_at"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	SortBy    string     `json:"sort_by"`    // "created_at", "title", "start_date"
	SortOrder string     `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	Type      *models.QuestionType `json:"type"`
	Category  *string              `json:"category"`
	CreatedBy *string              `json:"created_by"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
}

type ResultFilters struct {
	StudentID *string    `json:"student_id"`
	DateFrom  *time.Time `json:"date_from"`
	DateTo    *time.Time `json:"date_to"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
}

// IdentityKeys are the weak keys the attempt ledger matches on. The count
// query ORs every non-empty key; empty keys are skipped so they can never
// match empty columns.
type IdentityKeys struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// Empty reports whether no key is usable; an empty set matches nothing.
func (k IdentityKeys) Empty() bool {
	return k.UserID == "" && k.Username == "" && k.FullName == ""
}
