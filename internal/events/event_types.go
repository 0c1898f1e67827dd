package events

import (
	"time"

	"github.com/spec-kit/todo-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTodoCreated   EventType = "todo_created"
	EventTodoUpdated   EventType = "todo_updated"
	EventTodoCompleted EventType = "todo_completed"
	EventTodoDeleted   EventType = "todo_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TodoID    int64       `json:"todo_id"`
	UserID    int64       `json:"user_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TodoCreatedPayload payload.
type TodoCreatedPayload struct {
	Title    string              `json:"title"`
	Priority domain.TodoPriority `json:"priority"`
	DueDate  *time.Time          `json:"due_date,omitempty"`
}

// TodoUpdatedPayload payload.
type TodoUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// TodoCompletedPayload payload.
type TodoCompletedPayload struct {
	Title string `json:"title"`
}

// TodoDeletedPayload payload.
type TodoDeletedPayload struct {
	Title string `json:"title"`
}
