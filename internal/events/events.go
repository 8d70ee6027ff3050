package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	StudentRegistered  EventType = "student.registered"
	CourseCreated      EventType = "course.created"
	CourseUpdated      EventType = "course.updated"
	CourseDeleted      EventType = "course.deleted"
	EnrollmentCreated  EventType = "enrollment.created"
	ModuleCompleted    EventType = "module.completed"
	ModuleReset        EventType = "module.reset"
	ProgressReconciled EventType = "progress.reconciled"
)

// Event is the envelope written to the message bus
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// EventPublisher sends domain events to interested consumers
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type StudentPayload struct {
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
}

type CoursePayload struct {
	CourseID         string `json:"course_id"`
	Title            string `json:"title"`
	TotalModules     int    `json:"total_modules"`
	AffectedStudents int    `json:"affected_students,omitempty"`
}

type EnrollmentPayload struct {
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	At        time.Time `json:"at"`
}

type ProgressPayload struct {
	StudentID        string `json:"student_id"`
	CourseID         string `json:"course_id"`
	ModuleID         string `json:"module_id,omitempty"`
	Progress         int    `json:"progress"`
	PreviousProgress int    `json:"previous_progress"`
	CompletedModules int    `json:"completed_modules"`
	TotalModules     int    `json:"total_modules"`
}
