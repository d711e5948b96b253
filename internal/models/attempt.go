package models

import (
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
)

// ExamAttempt is one taker's session. Each attempt owns its question
// snapshot, so concurrent takers of the same exam never share state.
type ExamAttempt struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	ExamID uint `json:"exam_id" gorm:"not null;index"`

	// StudentID is empty for anonymous takers on public exams.
	StudentID   string `json:"student_id" gorm:"size:255;index"`
	StudentName string `json:"student_name" gorm:"size:200"`

	AttemptNumber int           `json:"attempt_number" gorm:"not null"`
	Status        AttemptStatus `json:"status" gorm:"not null;size:20;default:in_progress;index"`
	StartedAt     time.Time     `json:"started_at" gorm:"not null"`
	SubmittedAt   *time.Time    `json:"submitted_at"`

	Questions []AttemptQuestion `json:"questions,omitempty" gorm:"foreignKey:AttemptID"`
}

func (ExamAttempt) TableName() string {
	return "exam_attempts"
}

// AttemptQuestion is one row of an attempt's question snapshot: which bank
// question was served, at which position, with which option order. The
// served option order is persisted so submissions can be scored against it
// even when answer shuffling re-labelled the options.
type AttemptQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	AttemptID  uint `json:"attempt_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	QuestionID uint `json:"question_id" gorm:"not null;uniqueIndex:idx_attempt_question"`
	Position   int  `json:"position" gorm:"not null"`

	Options datatypes.JSONSlice[string] `json:"options" gorm:"not null"`

	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

func (AttemptQuestion) TableName() string {
	return "attempt_questions"
}

// ExamResult is the immutable attempt ledger entry written once per
// completed attempt. StudentID and StudentName are free text, not foreign
// keys: anonymous takers are recorded by whatever they claimed.
type ExamResult struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	ExamID    uint  `json:"exam_id" gorm:"not null;index"`
	AttemptID *uint `json:"attempt_id" gorm:"index"`

	StudentID   string `json:"student_id" gorm:"size:255;index"`
	StudentName string `json:"student_name" gorm:"size:200;index"`

	Score          float64   `json:"score" gorm:"not null"`
	TotalQuestions int       `json:"total_questions" gorm:"not null"`
	CorrectAnswers int       `json:"correct_answers" gorm:"not null"`
	TimeSpent      int       `json:"time_spent"` // seconds
	AttemptNumber  int       `json:"attempt_number" gorm:"not null"`
	CompletedAt    time.Time `json:"completed_at" gorm:"not null;index"`
}

func (ExamResult) TableName() string {
	return "exam_results"
}
