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

// StartAttemptResult is what a taker gets back when an attempt begins.
type StartAttemptResult struct {
	AttemptID     uint              `json:"attempt_id"`
	AttemptNumber int               `json:"attempt_number"`
	TimeLimit     int               `json:"time_limit"` // minutes, enforced by the caller
	Questions     []SampledQuestion `json:"questions"`
}

// AttemptAnswer is one submitted answer: labels reference the option order
// the attempt snapshot served, not the bank order.
type AttemptAnswer struct {
	QuestionID uint     `json:"question_id" validate:"required"`
	Labels     []string `json:"labels"`
}

type SubmitAttemptRequest struct {
	AttemptID uint            `json:"attempt_id" validate:"required"`
	Answers   []AttemptAnswer `json:"answers" validate:"required,dive"`
	TimeSpent int             `json:"time_spent" validate:"min=0"` // seconds

	// Claimed identity fields, used for ledger reconciliation when the
	// taker is anonymous or partially identified.
	StudentID   string `json:"student_id" validate:"omitempty,max=255"`
	StudentName string `json:"student_name" validate:"omitempty,max=200"`
}

type SubmitAttemptResult struct {
	Score          float64 `json:"score"`
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	AttemptNumber  int     `json:"attempt_number"`
}

// AttemptService orchestrates the start/submit pipeline. Gates run strictly
// in order: visibility, time window, attempt ledger, sampler. Each gate
// failure is terminal and never retried.
type AttemptService interface {
	Start(ctx context.Context, identity *models.Identity, examID uint, now time.Time) (*StartAttemptResult, error)
	Submit(ctx context.Context, identity *models.Identity, req *SubmitAttemptRequest, now time.Time) (*SubmitAttemptResult, error)

	// CountAttempts is the single home of the weak OR-matching rule; a
	// stronger identity scheme replaces this function, not its callers.
	CountAttempts(ctx context.Context, identity *models.Identity, examID uint) (int, error)
}

type attemptService struct {
	repo      repositories.Repository
	access    AccessService
	sampler   *QuestionSampler
	publisher events.EventPublisher
	logger    utils.Logger
	validator *utils.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	access AccessService,
	sampler *QuestionSampler,
	publisher events.EventPublisher,
	logger utils.Logger,
	validator *utils.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		access:    access,
		sampler:   sampler,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

func (s *attemptService) Start(ctx context.Context, identity *models.Identity, examID uint, now time.Time) (*StartAttemptResult, error) {
	access, err := s.access.CanAccess(ctx, identity, examID)
	if err != nil {
		return nil, err
	}

	if err := s.access.CheckWindow(access.Exam, now); err != nil {
		return nil, err
	}

	// Anonymous takers start at zero; their true count is reconciled at
	// submission with the same matching rule.
	count, err := s.CountAttempts(ctx, identity, examID)
	if err != nil {
		return nil, err
	}
	if count >= access.MaxAttempts {
		return nil, &AttemptLimitError{Count: count, Ceiling: access.MaxAttempts}
	}

	questions, err := s.sampler.Sample(ctx, access.Exam)
	if err != nil {
		return nil, err
	}

	attempt := &models.ExamAttempt{
		ExamID:        examID,
		AttemptNumber: count + 1,
		Status:        models.AttemptInProgress,
		StartedAt:     now,
	}
	if identity != nil {
		attempt.StudentID = identity.UserID
		attempt.StudentName = identity.FullName
	}

	// The session and its snapshot land together or not at all. The
	// snapshot belongs to this attempt alone, so a concurrent taker of the
	// same exam writes a disjoint row set.
	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Attempt().Create(ctx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}

		rows := make([]*models.AttemptQuestion, len(questions))
		for i, q := range questions {
			served := make([]string, len(q.Options))
			for j, opt := range q.Options {
				served[j] = opt.Text
			}
			rows[i] = &models.AttemptQuestion{
				AttemptID:  attempt.ID,
				QuestionID: q.QuestionID,
				Position:   q.Position,
				Options:    served,
			}
		}
		if err := tx.Attempt().CreateSnapshot(ctx, rows); err != nil {
			return fmt.Errorf("failed to persist question snapshot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("attempt started",
		"exam_id", examID,
		"attempt_id", attempt.ID,
		"attempt_number", attempt.AttemptNumber,
		"student_id", attempt.StudentID)

	s.publishAttemptEvent(ctx, events.EventAttemptStarted, access.Exam.ID, attempt)

	return &StartAttemptResult{
		AttemptID:     attempt.ID,
		AttemptNumber: attempt.AttemptNumber,
		TimeLimit:     access.Exam.TimeLimit,
		Questions:     questions,
	}, nil
}

func (s *attemptService) Submit(ctx context.Context, identity *models.Identity, req *SubmitAttemptRequest, now time.Time) (*SubmitAttemptResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.repo.Attempt().GetByID(ctx, req.AttemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	// Authenticated attempts may only be submitted by their owner.
	// Anonymous attempts carry no owner to check against.
	if attempt.StudentID != "" && (identity == nil || identity.UserID != attempt.StudentID) {
		userID := ""
		if identity != nil {
			userID = identity.UserID
		}
		return nil, NewPermissionError(userID, "attempt", "submit")
	}

	if attempt.Status == models.AttemptSubmitted {
		return nil, ErrAttemptAlreadySubmitted
	}

	exam, err := s.repo.Exam().GetByID(ctx, attempt.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	snapshot, err := s.repo.Attempt().GetSnapshot(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load question snapshot: %w", err)
	}

	answered := make(map[uint][]string, len(req.Answers))
	for _, ans := range req.Answers {
		answered[ans.QuestionID] = ans.Labels
	}

	if exam.RequireAllQuestions {
		for _, row := range snapshot {
			if len(answered[row.QuestionID]) == 0 {
				return nil, fmt.Errorf("%w: question %d is unanswered", ErrValidationFailed, row.QuestionID)
			}
		}
	}

	correct := 0
	for _, row := range snapshot {
		if scoreQuestion(&row.Question, row.Options, answered[row.QuestionID]) {
			correct++
		}
	}

	total := len(snapshot)
	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	// Reconcile the ledger with the merged claimed + authenticated identity
	// before writing, so anonymous takers get a correct attempt ordinal.
	keys := identityKeys(identity)
	if keys.UserID == "" {
		keys.UserID = req.StudentID
	}
	if keys.FullName == "" {
		keys.FullName = req.StudentName
	}
	priorCount, err := s.repo.Result().CountMatching(ctx, attempt.ExamID, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to count prior attempts: %w", err)
	}
	attemptNumber := priorCount + 1

	result := &models.ExamResult{
		ExamID:         attempt.ExamID,
		AttemptID:      &attempt.ID,
		StudentID:      resolveStudentID(identity, req),
		StudentName:    resolveStudentName(identity, req),
		Score:          score,
		TotalQuestions: total,
		CorrectAnswers: correct,
		TimeSpent:      req.TimeSpent,
		AttemptNumber:  attemptNumber,
		CompletedAt:    now,
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		if err := tx.Result().Create(ctx, result); err != nil {
			return fmt.Errorf("failed to persist result: %w", err)
		}

		attempt.Status = models.AttemptSubmitted
		attempt.SubmittedAt = &now
		if err := tx.Attempt().Update(ctx, attempt); err != nil {
			return fmt.Errorf("failed to update attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("attempt submitted",
		"exam_id", attempt.ExamID,
		"attempt_id", attempt.ID,
		"score", score,
		"correct", correct,
		"total", total)

	s.publishAttemptEvent(ctx, events.EventAttemptSubmitted, attempt.ExamID, attempt)

	return &SubmitAttemptResult{
		Score:          score,
		CorrectCount:   correct,
		TotalQuestions: total,
		AttemptNumber:  attemptNumber,
	}, nil
}

// CountAttempts counts ledger rows matching ANY of the caller's weak keys:
// studentId == userId, studentId == username, studentName == fullName.
// Intentionally permissive OR-matching; see the repository for the query.
func (s *attemptService) CountAttempts(ctx context.Context, identity *models.Identity, examID uint) (int, error) {
	if identity == nil {
		return 0, nil
	}
	count, err := s.repo.Result().CountMatching(ctx, examID, identityKeys(identity))
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}

// ===== HELPERS =====

func identityKeys(identity *models.Identity) repositories.IdentityKeys {
	if identity == nil {
		return repositories.IdentityKeys{}
	}
	return repositories.IdentityKeys{
		UserID:   identity.UserID,
		Username: identity.Username,
		FullName: identity.FullName,
	}
}

func resolveStudentID(identity *models.Identity, req *SubmitAttemptRequest) string {
	if identity != nil && identity.UserID != "" {
		return identity.UserID
	}
	return req.StudentID
}

func resolveStudentName(identity *models.Identity, req *SubmitAttemptRequest) string {
	if identity != nil && identity.FullName != "" {
		return identity.FullName
	}
	return req.StudentName
}

// scoreQuestion translates submitted labels through the served option order
// into option texts, then compares against the bank's correct set. Set
// equality covers both single and multiple answer types.
func scoreQuestion(q *models.Question, served []string, labels []string) bool {
	if len(labels) == 0 {
		return false
	}

	selected := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		idx := models.LabelIndex(label)
		if idx < 0 || idx >= len(served) {
			return false
		}
		selected[served[idx]] = struct{}{}
	}

	correct := q.CorrectOptionTexts()
	if len(selected) != len(correct) {
		return false
	}
	for _, text := range correct {
		if _, ok := selected[text]; !ok {
			return false
		}
	}
	return true
}

func (s *attemptService) publishAttemptEvent(ctx context.Context, eventType events.ExamEventType, examID uint, attempt *models.ExamAttempt) {
	if s.publisher == nil {
		return
	}
	event := events.NewExamEvent(eventType, examID)
	event.AttemptID = attempt.ID
	event.StudentID = attempt.StudentID
	if err := s.publisher.PublishExamEvent(ctx, event); err != nil {
		// Event delivery is best-effort; the attempt itself already
		// committed.
		s.logger.Warn("failed to publish attempt event", "event_type", eventType, "attempt_id", attempt.ID, "error", err)
	}
}
