package models

import (
	"time"

	"gorm.io/gorm"
)

type Exam struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description *string `json:"description" gorm:"type:text" validate:"omitempty,max=1000"`

	// QuestionCount is the target sample size drawn from the bank per attempt.
	QuestionCount int `json:"question_count" gorm:"not null" validate:"required,min=1,max=200"`
	// TimeLimit is enforced client-side; minutes.
	TimeLimit int       `json:"time_limit" gorm:"not null" validate:"required,min=1,max=600"`
	StartDate time.Time `json:"start_date" gorm:"not null" validate:"required"`
	EndDate   time.Time `json:"end_date" gorm:"not null" validate:"required"`
	// Timezone is the IANA zone used only to render window messages.
	Timezone string `json:"timezone" gorm:"size:64;default:UTC"`

	ShuffleQuestions    bool `json:"shuffle_questions" gorm:"default:false"`
	ShuffleAnswers      bool `json:"shuffle_answers" gorm:"default:false"`
	RequireAllQuestions bool `json:"require_all_questions" gorm:"default:false"`

	MaxAttempts int  `json:"max_attempts" gorm:"default:1" validate:"min=1,max=100"`
	IsActive    bool `json:"is_active" gorm:"default:true;index"`
	IsPublic    bool `json:"is_public" gorm:"default:false"`

	CreatedBy string         `json:"created_by" gorm:"not null;size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Assignments []ExamAssignment `json:"assignments,omitempty" gorm:"foreignKey:ExamID"`
}

func (Exam) TableName() string {
	return "exams"
}

// DisplayLocation resolves the configured display timezone, falling back
// to UTC for empty or unknown zone names. Window comparison never uses it.
func (e *Exam) DisplayLocation() *time.Location {
	if e.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExamAssignment permits one user to take one private exam. MaxAttempts,
// when set, replaces the exam's default ceiling for that user.
type ExamAssignment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ExamID      uint      `json:"exam_id" gorm:"not null;uniqueIndex:idx_exam_user"`
	UserID      string    `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_exam_user"`
	MaxAttempts *int      `json:"max_attempts" validate:"omitempty,min=1,max=100"`
	AssignedBy  string    `json:"assigned_by" gorm:"size:255"`
	AssignedAt  time.Time `json:"assigned_at"`
}

func (ExamAssignment) TableName() string {
	return "exam_assignments"
}
