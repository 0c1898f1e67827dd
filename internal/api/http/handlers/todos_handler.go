package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/dto"
	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/repository"
	"github.com/spec-kit/todo-service/internal/service"
	apperrors "github.com/spec-kit/todo-service/pkg/util"
)

// TodosHandler manages the owner-scoped todo endpoints. Routes reach it only
// through the auth middleware and the ownership guard, so the path user id is
// already the verified subject.
type TodosHandler struct {
	service *service.TodoService
}

// NewTodosHandler constructs handler.
func NewTodosHandler(todoService *service.TodoService) *TodosHandler {
	return &TodosHandler{service: todoService}
}

// CreateTodo POST /users/:userID/todos.
func (h *TodosHandler) CreateTodo(c *fiber.Ctx) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	var req dto.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TodoCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}

	todo, err := h.service.Create(c.Context(), userID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(todoResponse(todo, time.Now()))
}

// ListTodos GET /users/:userID/todos.
func (h *TodosHandler) ListTodos(c *fiber.Ctx) error {
	userID, err := pathUserID(c)
	if err != nil {
		return err
	}
	filter, err := parseTodoQuery(c)
	if err != nil {
		return err
	}

	todos, err := h.service.List(c.Context(), userID, filter)
	if err != nil {
		return err
	}

	now := time.Now()
	items := make([]dto.TodoResponse, 0, len(todos))
	for i := range todos {
		items = append(items, todoResponse(&todos[i], now))
	}
	return c.JSON(items)
}

// GetTodo GET /users/:userID/todos/:todoID.
func (h *TodosHandler) GetTodo(c *fiber.Ctx) error {
	userID, todoID, err := pathTodoIDs(c)
	if err != nil {
		return err
	}
	todo, err := h.service.Get(c.Context(), userID, todoID)
	if err != nil {
		return err
	}
	return c.JSON(todoResponse(todo, time.Now()))
}

// UpdateTodo PUT /users/:userID/todos/:todoID.
func (h *TodosHandler) UpdateTodo(c *fiber.Ctx) error {
	userID, todoID, err := pathTodoIDs(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	todo, err := h.service.Update(c.Context(), userID, todoID, service.TodoUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(todoResponse(todo, time.Now()))
}

// DeleteTodo DELETE /users/:userID/todos/:todoID.
func (h *TodosHandler) DeleteTodo(c *fiber.Ctx) error {
	userID, todoID, err := pathTodoIDs(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), userID, todoID); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func pathUserID(c *fiber.Ctx) (int64, error) {
	userID, err := strconv.ParseInt(c.Params("userID"), 10, 64)
	if err != nil || userID <= 0 {
		return 0, apperrors.NewValidationError("invalid user id in path", nil)
	}
	return userID, nil
}

func pathTodoIDs(c *fiber.Ctx) (int64, int64, error) {
	userID, err := pathUserID(c)
	if err != nil {
		return 0, 0, err
	}
	todoID, err := strconv.ParseInt(c.Params("todoID"), 10, 64)
	if err != nil || todoID <= 0 {
		return 0, 0, apperrors.NewValidationError("invalid todo id in path", nil)
	}
	return userID, todoID, nil
}

func parseTodoQuery(c *fiber.Ctx) (repository.TodoFilter, error) {
	filter := repository.TodoFilter{
		SortField: c.Query("sort", "created_at"),
		SortOrder: c.Query("order", "desc"),
		Now:       time.Now(),
	}

	if completedStr := c.Query("completed"); completedStr != "" {
		completed, err := strconv.ParseBool(completedStr)
		if err != nil {
			return filter, apperrors.NewValidationError("completed must be true or false", nil)
		}
		filter.Completed = &completed
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		priority := domain.TodoPriority(strings.ToLower(priorityStr))
		if !priority.Valid() {
			return filter, apperrors.NewValidationError("priority must be one of high, medium, low", nil)
		}
		filter.Priority = &priority
	}
	if statusStr := c.Query("due_date_status"); statusStr != "" {
		status := domain.DueDateStatus(strings.ToLower(statusStr))
		if !status.Valid() {
			return filter, apperrors.NewValidationError("due_date_status must be one of overdue, due_today, upcoming, no_due_date", nil)
		}
		filter.DueStatus = &status
	}
	return filter, nil
}

func todoResponse(todo *domain.Todo, now time.Time) dto.TodoResponse {
	return dto.TodoResponse{
		ID:            todo.ID,
		Title:         todo.Title,
		Description:   todo.Description,
		Completed:     todo.Completed,
		DueDate:       todo.DueDate,
		DueDateStatus: todo.DueStatusAt(now),
		Priority:      todo.Priority,
		UserID:        todo.UserID,
		CreatedAt:     todo.CreatedAt,
		UpdatedAt:     todo.UpdatedAt,
	}
}
