package services

import (
	"context"
	"fmt"

	"github.com/trainhub/exam-service/internal/models"
	"github.com/trainhub/exam-service/internal/repositories"
	"github.com/trainhub/exam-service/internal/utils"
)

type CreateQuestionRequest struct {
	Content       string              `json:"content" validate:"required,min=1"`
	Type          models.QuestionType `json:"type" validate:"required,question_type"`
	Options       []string            `json:"options" validate:"required,min=2,max=26,dive,required"`
	CorrectLabels []string            `json:"correct_labels" validate:"required,min=1,dive,required"`
	Category      *string             `json:"category" validate:"omitempty,max=100"`
}

type UpdateQuestionRequest struct {
	Content       *string  `json:"content" validate:"omitempty,min=1"`
	Options       []string `json:"options" validate:"omitempty,min=2,max=26,dive,required"`
	CorrectLabels []string `json:"correct_labels" validate:"omitempty,min=1,dive,required"`
	Category      *string  `json:"category" validate:"omitempty,max=100"`
}

// QuestionService manages the shared bank. Bank entries are referenced by
// attempt snapshots, never owned by exams; entries in use cannot be deleted.
type QuestionService interface {
	Create(ctx context.Context, actor *models.Identity, req *CreateQuestionRequest) (*models.Question, error)
	Update(ctx context.Context, actor *models.Identity, questionID uint, req *UpdateQuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, actor *models.Identity, questionID uint) error
	GetByID(ctx context.Context, actor *models.Identity, questionID uint) (*models.Question, error)
	List(ctx context.Context, actor *models.Identity, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
}

type questionService struct {
	repo      repositories.Repository
	perms     PermissionService
	logger    utils.Logger
	validator *utils.Validator
}

func NewQuestionService(repo repositories.Repository, perms PermissionService, logger utils.Logger, validator *utils.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		perms:     perms,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, actor *models.Identity, req *CreateQuestionRequest) (*models.Question, error) {
	if err := s.perms.Require(ctx, actor, PermQuestionManage, "question", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := validateLabels(req.Type, req.Options, req.CorrectLabels); err != nil {
		return nil, err
	}

	question := &models.Question{
		Content:       req.Content,
		Type:          req.Type,
		Options:       req.Options,
		CorrectLabels: req.CorrectLabels,
		Category:      req.Category,
		CreatedBy:     actor.UserID,
	}
	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("question created", "question_id", question.ID, "type", question.Type, "created_by", actor.UserID)
	return question, nil
}

func (s *questionService) Update(ctx context.Context, actor *models.Identity, questionID uint, req *UpdateQuestionRequest) (*models.Question, error) {
	if err := s.perms.Require(ctx, actor, PermQuestionManage, "question", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.GetByID(ctx, actor, questionID)
	if err != nil {
		return nil, err
	}

	if req.Content != nil {
		question.Content = *req.Content
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectLabels != nil {
		question.CorrectLabels = req.CorrectLabels
	}
	if req.Category != nil {
		question.Category = req.Category
	}
	if err := validateLabels(question.Type, question.Options, question.CorrectLabels); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("question updated", "question_id", question.ID, "updated_by", actor.UserID)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, actor *models.Identity, questionID uint) error {
	if err := s.perms.Require(ctx, actor, PermQuestionManage, "question", "delete"); err != nil {
		return err
	}
	if _, err := s.GetByID(ctx, actor, questionID); err != nil {
		return err
	}

	inUse, err := s.repo.Question().InUse(ctx, questionID)
	if err != nil {
		return fmt.Errorf("failed to check question usage: %w", err)
	}
	if inUse {
		return ErrQuestionInUse
	}

	if err := s.repo.Question().Delete(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("question deleted", "question_id", questionID, "deleted_by", actor.UserID)
	return nil
}

func (s *questionService) GetByID(ctx context.Context, actor *models.Identity, questionID uint) (*models.Question, error) {
	if err := s.perms.Require(ctx, actor, PermQuestionManage, "question", "read"); err != nil {
		return nil, err
	}
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, actor *models.Identity, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	if err := s.perms.Require(ctx, actor, PermQuestionManage, "question", "list"); err != nil {
		return nil, 0, err
	}
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

// validateLabels checks that correct labels point into the option list and
// that single-answer questions declare exactly one.
func validateLabels(questionType models.QuestionType, options []string, correctLabels []string) error {
	if questionType == models.QuestionSingle && len(correctLabels) != 1 {
		return fmt.Errorf("%w: single-answer questions need exactly one correct label", ErrValidationFailed)
	}

	seen := make(map[string]struct{}, len(correctLabels))
	for _, label := range correctLabels {
		idx := models.LabelIndex(label)
		if idx < 0 || idx >= len(options) {
			return fmt.Errorf("%w: correct label %q does not match any option", ErrValidationFailed, label)
		}
		if _, dup := seen[label]; dup {
			return fmt.Errorf("%w: duplicate correct label %q", ErrValidationFailed, label)
		}
		seen[label] = struct{}{}
	}
	return nil
}
