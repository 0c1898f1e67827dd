package dto

import (
	"time"

	"github.com/spec-kit/todo-service/internal/domain"
)

// CreateTodoRequest is the POST /todos payload. The owner is taken from the
// authenticated path, never from this body.
type CreateTodoRequest struct {
	Title       string               `json:"title"`
	Description *string              `json:"description"`
	Completed   bool                 `json:"completed"`
	DueDate     *time.Time           `json:"due_date"`
	Priority    *domain.TodoPriority `json:"priority"`
}

// UpdateTodoRequest is the PUT payload; absent fields stay unchanged.
type UpdateTodoRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Completed   *bool                `json:"completed"`
	DueDate     *time.Time           `json:"due_date"`
	Priority    *domain.TodoPriority `json:"priority"`
}

// TodoResponse is the public representation of a todo.
type TodoResponse struct {
	ID            int64                `json:"id"`
	Title         string               `json:"title"`
	Description   *string              `json:"description"`
	Completed     bool                 `json:"completed"`
	DueDate       *time.Time           `json:"due_date"`
	DueDateStatus domain.DueDateStatus `json:"due_date_status"`
	Priority      domain.TodoPriority  `json:"priority"`
	UserID        int64                `json:"user_id"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}
