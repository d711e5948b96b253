package services

import (
	"context"
	"fmt"
	"time"

	"github.com/trainhub/exam-service/internal/events"
	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

type CreateExamRequest struct {
	Title               string    `json:"title" validate:"required,min=1,max=200"`
	Description         *string   `json:"description" validate:"omitempty,max=1000"`
	QuestionCount       int       `json:"question_count" validate:"required,min=1,max=200"`
	TimeLimit           int       `json:"time_limit" validate:"required,min=1,max=600"`
	StartDate           time.Time `json:"start_date" validate:"required"`
	EndDate             time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	Timezone            string    `json:"timezone" validate:"omitempty,max=64"`
	ShuffleQuestions    bool      `json:"shuffle_questions"`
	ShuffleAnswers      bool      `json:"shuffle_answers"`
	RequireAllQuestions bool      `json:"require_all_questions"`
	MaxAttempts         int       `json:"max_attempts" validate:"required,min=1,max=100"`
	IsPublic            bool      `json:"is_public"`
}

type UpdateExamRequest struct {
	Title               *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description         *string    `json:"description" validate:"omitempty,max=1000"`
	QuestionCount       *int       `json:"question_count" validate:"omitempty,min=1,max=200"`
	TimeLimit           *int       `json:"time_limit" validate:"omitempty,min=1,max=600"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	Timezone            *string    `json:"timezone" validate:"omitempty,max=64"`
	ShuffleQuestions    *bool      `json:"shuffle_questions"`
	ShuffleAnswers      *bool      `json:"shuffle_answers"`
	RequireAllQuestions *bool      `json:"require_all_questions"`
	MaxAttempts         *int       `json:"max_attempts" validate:"omitempty,min=1,max=100"`
	IsActive            *bool      `json:"is_active"`
	IsPublic            *bool      `json:"is_public"`
}

type AssignExamRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	MaxAttempts *int   `json:"max_attempts" validate:"omitempty,min=1,max=100"`
}

// ExamService is the administrative surface over the exam catalog. Every
// mutation resolves the caller's permission first; non-admin editors must
// additionally own the exam.
type ExamService interface {
	Create(ctx context.Context, actor *models.Identity, req *CreateExamRequest) (*models.Exam, error)
	Update(ctx context.Context, actor *models.Identity, examID uint, req *UpdateExamRequest) (*models.Exam, error)
	Delete(ctx context.Context, actor *models.Identity, examID uint) error
	GetByID(ctx context.Context, examID uint) (*models.Exam, error)
	List(ctx context.Context, actor *models.Identity, filters repositories.ExamFilters) ([]*models.Exam, int64, error)

	Assign(ctx context.Context, actor *models.Identity, examID uint, req *AssignExamRequest) (*models.ExamAssignment, error)
	Unassign(ctx context.Context, actor *models.Identity, examID uint, userID string) error
	ListAssignments(ctx context.Context, actor *models.Identity, examID uint) ([]*models.ExamAssignment, error)

	ListResults(ctx context.Context, actor *models.Identity, examID uint, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error)
}

type examService struct {
	repo      repositories.Repository
	perms     PermissionService
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewExamService(repo repositories.Repository, perms PermissionService, publisher events.EventPublisher, logger utils.Logger, validator *utils.Validator) ExamService {
	return &examService{
		repo:      repo,
		perms:     perms,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *examService) Create(ctx context.Context, actor *models.Identity, req *CreateExamRequest) (*models.Exam, error) {
	if err := s.perms.Require(ctx, actor, PermExamCreate, "exam", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Title:               req.Title,
		Description:         req.Description,
		QuestionCount:       req.QuestionCount,
		TimeLimit:           req.TimeLimit,
		StartDate:           req.StartDate,
		EndDate:             req.EndDate,
		Timezone:            req.Timezone,
		ShuffleQuestions:    req.ShuffleQuestions,
		ShuffleAnswers:      req.ShuffleAnswers,
		RequireAllQuestions: req.RequireAllQuestions,
		MaxAttempts:         req.MaxAttempts,
		IsActive:            true,
		IsPublic:            req.IsPublic,
		CreatedBy:           actor.UserID,
	}
	if exam.Timezone == "" {
		exam.Timezone = "UTC"
	}

	if err := s.repo.Exam().Create(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to create exam: %w", err)
	}

	s.logger.Info("exam created", "exam_id", exam.ID, "title", exam.Title, "created_by", actor.UserID)
	s.publishExamEvent(ctx, events.EventExamCreated, exam.ID, actor)

	return exam, nil
}

func (s *examService) Update(ctx context.Context, actor *models.Identity, examID uint, req *UpdateExamRequest) (*models.Exam, error) {
	if err := s.perms.Require(ctx, actor, PermExamUpdate, "exam", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exam, err := s.getOwnedExam(ctx, actor, examID, "update")
	if err != nil {
		return nil, err
	}

	applyExamUpdate(exam, req)
	if !exam.EndDate.After(exam.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidationFailed)
	}

	if err := s.repo.Exam().Update(ctx, exam); err != nil {
		return nil, fmt.Errorf("failed to update exam: %w", err)
	}

	s.logger.Info("exam updated", "exam_id", exam.ID, "updated_by", actor.UserID)
	s.publishExamEvent(ctx, events.EventExamUpdated, exam.ID, actor)

	return exam, nil
}

func (s *examService) Delete(ctx context.Context, actor *models.Identity, examID uint) error {
	if err := s.perms.Require(ctx, actor, PermExamDelete, "exam", "delete"); err != nil {
		return err
	}
	if _, err := s.getOwnedExam(ctx, actor, examID, "delete"); err != nil {
		return err
	}

	// Exams with recorded results keep their ledger intact.
	hasResults, err := s.repo.Exam().HasResults(ctx, examID)
	if err != nil {
		return fmt.Errorf("failed to check exam results: %w", err)
	}
	if hasResults {
		return ErrExamHasResults
	}

	if err := s.repo.Exam().Delete(ctx, examID); err != nil {
		return fmt.Errorf("failed to delete exam: %w", err)
	}

	s.logger.Info("exam deleted", "exam_id", examID, "deleted_by", actor.UserID)
	return nil
}

func (s *examService) GetByID(ctx context.Context, examID uint) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, examID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}

func (s *examService) List(ctx context.Context, actor *models.Identity, filters repositories.ExamFilters) ([]*models.Exam, int64, error) {
	// Non-admin callers only see their own exams unless scoped otherwise.
	if actor != nil && !actor.IsAdmin() && filters.CreatedBy == nil {
		filters.CreatedBy = &actor.UserID
	}

	exams, total, err := s.repo.Exam().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exams: %w", err)
	}
	return exams, total, nil
}

func (s *examService) Assign(ctx context.Context, actor *models.Identity, examID uint, req *AssignExamRequest) (*models.ExamAssignment, error) {
	if err := s.perms.Require(ctx, actor, PermExamAssign, "exam", "assign"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, examID); err != nil {
		return nil, err
	}

	exists, err := s.repo.Assignment().Exists(ctx, examID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check assignment: %w", err)
	}
	if exists {
		return nil, ErrAssignmentExists
	}

	assignment := &models.ExamAssignment{
		ExamID:      examID,
		UserID:      req.UserID,
		MaxAttempts: req.MaxAttempts,
		AssignedBy:  actor.UserID,
		AssignedAt:  time.Now(),
	}
	if err := s.repo.Assignment().Create(ctx, assignment); err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	s.logger.Info("exam assigned", "exam_id", examID, "user_id", req.UserID, "assigned_by", actor.UserID)
	s.publishExamEvent(ctx, events.EventExamAssigned, examID, actor)

	return assignment, nil
}

func (s *examService) Unassign(ctx context.Context, actor *models.Identity, examID uint, userID string) error {
	if err := s.perms.Require(ctx, actor, PermExamAssign, "exam", "unassign"); err != nil {
		return err
	}
	if err := s.repo.Assignment().Delete(ctx, examID, userID); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	s.logger.Info("exam unassigned", "exam_id", examID, "user_id", userID, "unassigned_by", actor.UserID)
	return nil
}

func (s *examService) ListAssignments(ctx context.Context, actor *models.Identity, examID uint) ([]*models.ExamAssignment, error) {
	if err := s.perms.Require(ctx, actor, PermExamAssign, "exam", "list_assignments"); err != nil {
		return nil, err
	}
	assignments, err := s.repo.Assignment().ListByExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	return assignments, nil
}

func (s *examService) ListResults(ctx context.Context, actor *models.Identity, examID uint, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	if err := s.perms.Require(ctx, actor, PermExamResultsView, "exam", "view_results"); err != nil {
		return nil, 0, err
	}
	if _, err := s.GetByID(ctx, examID); err != nil {
		return nil, 0, err
	}

	results, total, err := s.repo.Result().ListByExam(ctx, examID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list results: %w", err)
	}
	return results, total, nil
}

// getOwnedExam loads the exam and enforces ownership for non-admin editors.
func (s *examService) getOwnedExam(ctx context.Context, actor *models.Identity, examID uint, action string) (*models.Exam, error) {
	exam, err := s.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && exam.CreatedBy != actor.UserID {
		return nil, NewPermissionError(actor.UserID, "exam", action)
	}
	return exam, nil
}

func applyExamUpdate(exam *models.Exam, req *UpdateExamRequest) {
	if req.Title != nil {
		exam.Title = *req.Title
	}
	if req.Description != nil {
		exam.Description = req.Description
	}
	if req.QuestionCount != nil {
		exam.QuestionCount = *req.QuestionCount
	}
	if req.TimeLimit != nil {
		exam.TimeLimit = *req.TimeLimit
	}
	if req.StartDate != nil {
		exam.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		exam.EndDate = *req.EndDate
	}
	if req.Timezone != nil {
		exam.Timezone = *req.Timezone
	}
	if req.ShuffleQuestions != nil {
		exam.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleAnswers != nil {
		exam.ShuffleAnswers = *req.ShuffleAnswers
	}
	if req.RequireAllQuestions != nil {
		exam.RequireAllQuestions = *req.RequireAllQuestions
	}
	if req.MaxAttempts != nil {
		exam.MaxAttempts = *req.MaxAttempts
	}
	if req.IsActive != nil {
		exam.IsActive = *req.IsActive
	}
	if req.IsPublic != nil {
		exam.IsPublic = *req.IsPublic
	}
}

func (s *examService) publishExamEvent(ctx context.Context, eventType events.ExamEventType, examID uint, actor *models.Identity) {
	if s.publisher == nil {
		return
	}
	event := events.NewExamEvent(eventType, examID)
	if actor != nil {
		event.ActorID = actor.UserID
	}
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish exam event", "event_type", eventType, "exam_id", examID, "error", err)
	}
}
