package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

type ExamEventType string

const (
	EventExamCreated      ExamEventType = "exam.created"
	EventExamUpdated      ExamEventType = "exam.updated"
	EventExamAssigned     ExamEventType = "exam.assigned"
	EventAttemptStarted   ExamEventType = "attempt.started"
	EventAttemptSubmitted ExamEventType = "attempt.submitted"
)

// ExamEvent is the envelope published for exam lifecycle changes.
// Consumers (notification service, analytics) live outside this service.
type ExamEvent struct {
	ID        string        `json:"id"`
	Type      ExamEventType `json:"type"`
	ExamID    uint          `json:"exam_id"`
	AttemptID uint          `json:"attempt_id,omitempty"`
	StudentID string        `json:"student_id,omitempty"`
	ActorID   string        `json:"actor_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"`
	Version   string        `json:"version"`

	Payload map[string]interface{} `json:"payload,omitempty"`
}

// NewExamEvent fills in the envelope boilerplate.
func NewExamEvent(eventType ExamEventType, examID uint) *ExamEvent {
	return &ExamEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		ExamID:    examID,
		Timestamp: time.Now(),
		Source:    "exam-service",
		Version:   "1.0",
	}
}
