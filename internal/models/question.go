package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionType string

const (
	QuestionSingle   QuestionType = "single"
	QuestionMultiple QuestionType = "multiple"
)

// Question is an immutable bank entry. Exams reference bank questions
// through attempt snapshots; they never own or mutate them.
type Question struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	Content string       `json:"content" gorm:"type:text;not null" validate:"required,min=1"`
	Type    QuestionType `json:"type" gorm:"not null;size:20" validate:"required,question_type"`

	// Options is the ordered option list; labels A, B, C... are positional.
	Options datatypes.JSONSlice[string] `json:"options" gorm:"not null" validate:"required,min=2,max=26"`
	// CorrectLabels reference positions in Options as stored in the bank.
	CorrectLabels datatypes.JSONSlice[string] `json:"correct_labels" gorm:"not null" validate:"required,min=1"`

	Category *string `json:"category" gorm:"size:100;index"`

	CreatedBy string         `json:"created_by" gorm:"size:255;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// OptionLabel returns the positional label for an option index (A, B, ... Z).
func OptionLabel(i int) string {
	if i < 0 || i > 25 {
		return ""
	}
	return string(rune('A' + i))
}

// LabelIndex is the inverse of OptionLabel; -1 for anything out of range.
func LabelIndex(label string) int {
	if len(label) != 1 || label[0] < 'A' || label[0] > 'Z' {
		return -1
	}
	return int(label[0] - 'A')
}

// CorrectOptionTexts maps the stored correct labels back to option strings.
// Scoring compares option texts, so per-attempt answer shuffling cannot
// change which submissions count as correct.
func (q *Question) CorrectOptionTexts() []string {
	texts := make([]string, 0, len(q.CorrectLabels))
	for _, label := range q.CorrectLabels {
		idx := LabelIndex(label)
		if idx < 0 || idx >= len(q.Options) {
			continue
		}
		texts = append(texts, q.Options[idx])
	}
	return texts
}
