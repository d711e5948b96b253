package services

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/trainhub/exam-service/internal/errors"
)

// ===== DOMAIN ERROR KINDS =====
//
// Every gate in the attempt pipeline fails with one of these kinds so
// callers can render a precise, non-retryable message. Store I/O failures
// are wrapped generically and never share a kind with the list below.

var (
	// Generic
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Exam access
	ErrExamNotFound           = errors.New("exam not found")
	ErrExamDisabled           = errors.New("exam is disabled")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrNotAssigned            = errors.New("exam is not assigned to this user")

	// Time window
	ErrExamNotYetOpen = errors.New("exam is not open yet")
	ErrExamClosed     = errors.New("exam is closed")

	// Attempts
	ErrAttemptLimitReached     = errors.New("attempt limit reached")
	ErrInsufficientBank        = errors.New("question bank is smaller than the exam question count")
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")

	// Administration
	ErrPermissionDenied = errors.New("permission denied")
	ErrAssignmentExists = errors.New("exam already assigned to this user")
	ErrQuestionNotFound = errors.New("question not found")
	ErrQuestionInUse    = errors.New("question is referenced by existing attempts")
	ErrExamHasResults   = errors.New("exam has recorded results")
)

// ===== STRUCTURED ERROR CARRIERS =====

// Use shared validation errors from the errors package.
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// WindowError reports a closed or not-yet-open exam, carrying both the
// current time and the boundary so the taker can self-diagnose. Rendering
// uses the exam's display timezone; the comparison that produced the error
// was instant-based.
type WindowError struct {
	Kind     error
	Now      time.Time
	Boundary time.Time
	Location *time.Location
}

func (we *WindowError) Error() string {
	loc := we.Location
	if loc == nil {
		loc = time.UTC
	}
	now := we.Now.In(loc).Format(time.RFC1123)
	boundary := we.Boundary.In(loc).Format(time.RFC1123)

	if errors.Is(we.Kind, ErrExamNotYetOpen) {
		return fmt.Sprintf("exam is not open yet: it opens at %s (current time %s)", boundary, now)
	}
	return fmt.Sprintf("exam closed at %s (current time %s)", boundary, now)
}

func (we *WindowError) Unwrap() error { return we.Kind }

// AttemptLimitError carries the observed count and the effective ceiling.
type AttemptLimitError struct {
	Count   int
	Ceiling int
}

func (ale *AttemptLimitError) Error() string {
	return fmt.Sprintf("attempt limit reached: %d of %d attempts used", ale.Count, ale.Ceiling)
}

func (ale *AttemptLimitError) Unwrap() error { return ErrAttemptLimitReached }

// InsufficientBankError reports the pool size against the requested draw.
type InsufficientBankError struct {
	Available int
	Required  int
}

func (ibe *InsufficientBankError) Error() string {
	return fmt.Sprintf("question bank has %d questions, exam requires %d", ibe.Available, ibe.Required)
}

func (ibe *InsufficientBankError) Unwrap() error { return ErrInsufficientBank }

// PermissionError is the stable "not authorized" signal. It names the
// action for logs but deliberately carries no detail about which check
// failed beyond the top-level reason.
type PermissionError struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s", pe.UserID, pe.Action, pe.Resource)
}

func (pe *PermissionError) Unwrap() error { return ErrPermissionDenied }

func NewPermissionError(userID, resource, action string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
	}
}

// ===== ERROR PREDICATES =====

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrExamNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrAttemptNotFound)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrNotAssigned) ||
		errors.Is(err, ErrAuthenticationRequired)
}

func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrAssignmentExists) ||
		errors.Is(err, ErrAttemptAlreadySubmitted) ||
		errors.Is(err, ErrQuestionInUse) ||
		errors.Is(err, ErrExamHasResults)
}

// IsAttemptRejected covers the gate failures of the start-attempt pipeline.
// These are terminal for the call and must never be retried.
func IsAttemptRejected(err error) bool {
	return errors.Is(err, ErrExamDisabled) ||
		errors.Is(err, ErrExamNotYetOpen) ||
		errors.Is(err, ErrExamClosed) ||
		errors.Is(err, ErrAttemptLimitReached) ||
		errors.Is(err, ErrInsufficientBank)
}
