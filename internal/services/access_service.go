package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

// ExamAccess is the gate's verdict: the exam itself plus the attempt
// ceiling in effect for this caller (assignment override or exam default).
type ExamAccess struct {
	Exam        *models.Exam
	MaxAttempts int
	Reason      string
}

// AccessService decides whether an identity may act on an exam and whether
// the exam's window is open. It never mutates anything.
type AccessService interface {
	CanAccess(ctx context.Context, identity *models.Identity, examID uint) (*ExamAccess, error)
	CheckWindow(exam *models.Exam, now time.Time) error
}

type accessService struct {
	repo   repositories.Repository
	logger utils.Logger
}

func NewAccessService(repo repositories.Repository, logger utils.Logger) AccessService {
	return &accessService{
		repo:   repo,
		logger: logger,
	}
}

// CanAccess evaluates, in order and short-circuiting:
//  1. exam exists and is active: disable beats everything, including admin
//  2. admin: allowed, assignment bypassed (its ceiling override still applies)
//  3. public exam: allowed for anyone, including anonymous callers
//  4. private exam: requires an authenticated identity with an assignment row
func (s *accessService) CanAccess(ctx context.Context, identity *models.Identity, examID uint) (*ExamAccess, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	if !exam.IsActive {
		return nil, ErrExamDisabled
	}

	var assignment *models.ExamAssignment
	if identity != nil {
		assignment, err = s.repo.Assignment().Get(ctx, examID, identity.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to get exam assignment: %w", err)
		}
	}

	if identity.IsAdmin() {
		return &ExamAccess{
			Exam:        exam,
			MaxAttempts: effectiveMaxAttempts(exam, assignment),
			Reason:      "admin",
		}, nil
	}

	if exam.IsPublic {
		return &ExamAccess{
			Exam:        exam,
			MaxAttempts: effectiveMaxAttempts(exam, assignment),
			Reason:      "public",
		}, nil
	}

	if identity == nil {
		return nil, ErrAuthenticationRequired
	}
	if assignment == nil {
		return nil, ErrNotAssigned
	}

	return &ExamAccess{
		Exam:        exam,
		MaxAttempts: effectiveMaxAttempts(exam, assignment),
		Reason:      "assigned",
	}, nil
}

// CheckWindow compares instants; the display timezone only shapes the
// message. The window is inclusive at both boundaries.
func (s *accessService) CheckWindow(exam *models.Exam, now time.Time) error {
	if now.Before(exam.StartDate) {
		return &WindowError{
			Kind:     ErrExamNotYetOpen,
			Now:      now,
			Boundary: exam.StartDate,
			Location: exam.DisplayLocation(),
		}
	}
	if now.After(exam.EndDate) {
		return &WindowError{
			Kind:     ErrExamClosed,
			Now:      now,
			Boundary: exam.EndDate,
			Location: exam.DisplayLocation(),
		}
	}
	return nil
}

func effectiveMaxAttempts(exam *models.Exam, assignment *models.ExamAssignment) int {
	if assignment != nil && assignment.MaxAttempts != nil {
		return *assignment.MaxAttempts
	}
	return exam.MaxAttempts
}
