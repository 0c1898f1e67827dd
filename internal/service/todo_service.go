package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/repository"
	apperrors "github.com/spec-kit/todo-service/pkg/util"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
)

// TodoCreateInput carries validated-on-entry creation fields.
type TodoCreateInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Priority    domain.TodoPriority
}

// TodoUpdateInput carries partial update fields; nil means unchanged.
type TodoUpdateInput struct {
	Title       *string
	Description *string
	Completed   *bool
	DueDate     *time.Time
	Priority    *domain.TodoPriority
}

func (in TodoUpdateInput) empty() bool {
	return in.Title == nil && in.Description == nil && in.Completed == nil &&
		in.DueDate == nil && in.Priority == nil
}

// TodoService coordinates todo CRUD. Callers reach it only after the
// authorization guard has confirmed ownership, so userID here is always the
// verified subject.
type TodoService struct {
	repo       repository.TodoRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewTodoService builds the service. cache may be nil; caching then degrades
// to direct repository reads.
func NewTodoService(repo repository.TodoRepository, cache *redis.Client, cacheTTL time.Duration, dispatcher events.Dispatcher, logger *zap.Logger) *TodoService {
	return &TodoService{
		repo:       repo,
		cache:      cache,
		cacheTTL:   cacheTTL,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Create validates and persists a new todo for the user.
func (s *TodoService) Create(ctx context.Context, userID int64, input TodoCreateInput) (*domain.Todo, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TodoPriorityMedium
	}
	if !priority.Valid() {
		return nil, apperrors.NewValidationError("priority must be one of high, medium, low", nil)
	}

	todo := &domain.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		Completed:   input.Completed,
		DueDate:     input.DueDate,
		Priority:    priority,
	}
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, err
	}

	s.invalidateList(ctx, userID)
	s.publish(ctx, events.EventTodoCreated, todo, events.TodoCreatedPayload{
		Title:    todo.Title,
		Priority: todo.Priority,
		DueDate:  todo.DueDate,
	})

	s.logger.Info("todo created", zap.Int64("todo_id", todo.ID), zap.Int64("user_id", userID))
	return todo, nil
}

// List returns the user's todos honoring the filter. Unfiltered default
// listings are served from the Redis cache when available.
func (s *TodoService) List(ctx context.Context, userID int64, filter repository.TodoFilter) ([]domain.Todo, error) {
	cacheable := filter.IsZero() && s.cache != nil
	if cacheable {
		if todos, ok := s.cachedList(ctx, userID); ok {
			return todos, nil
		}
	}

	todos, err := s.repo.ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	if cacheable {
		s.storeList(ctx, userID, todos)
	}
	return todos, nil
}

// Get fetches one todo owned by the user.
func (s *TodoService) Get(ctx context.Context, userID, todoID int64) (*domain.Todo, error) {
	todo, err := s.repo.GetByID(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(todoID)
		}
		return nil, err
	}
	return todo, nil
}

// Update applies a partial update to an owned todo.
func (s *TodoService) Update(ctx context.Context, userID, todoID int64, input TodoUpdateInput) (*domain.Todo, error) {
	if input.empty() {
		return nil, apperrors.NewValidationError("at least one field must be provided for update", nil)
	}

	todo, err := s.repo.GetByID(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(todoID)
		}
		return nil, err
	}

	wasCompleted := todo.Completed
	changed := make([]string, 0, 5)

	if input.Title != nil {
		title, err := normalizeTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		todo.Title = title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		description, err := normalizeDescription(input.Description)
		if err != nil {
			return nil, err
		}
		todo.Description = description
		changed = append(changed, "description")
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
		changed = append(changed, "completed")
	}
	if input.DueDate != nil {
		todo.DueDate = input.DueDate
		changed = append(changed, "due_date")
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, apperrors.NewValidationError("priority must be one of high, medium, low", nil)
		}
		todo.Priority = *input.Priority
		changed = append(changed, "priority")
	}

	if err := s.repo.Update(ctx, todo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(todoID)
		}
		return nil, err
	}

	s.invalidateList(ctx, userID)
	if !wasCompleted && todo.Completed {
		s.publish(ctx, events.EventTodoCompleted, todo, events.TodoCompletedPayload{Title: todo.Title})
	} else {
		s.publish(ctx, events.EventTodoUpdated, todo, events.TodoUpdatedPayload{ChangedFields: changed})
	}

	s.logger.Info("todo updated", zap.Int64("todo_id", todo.ID), zap.Int64("user_id", userID), zap.Strings("fields", changed))
	return todo, nil
}

// Delete removes an owned todo permanently.
func (s *TodoService) Delete(ctx context.Context, userID, todoID int64) error {
	todo, err := s.repo.GetByID(ctx, userID, todoID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(todoID)
		}
		return err
	}

	if err := s.repo.Delete(ctx, userID, todoID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(todoID)
		}
		return err
	}

	s.invalidateList(ctx, userID)
	s.publish(ctx, events.EventTodoDeleted, todo, events.TodoDeletedPayload{Title: todo.Title})

	s.logger.Info("todo deleted", zap.Int64("todo_id", todoID), zap.Int64("user_id", userID))
	return nil
}

func (s *TodoService) cachedList(ctx context.Context, userID int64) ([]domain.Todo, bool) {
	raw, err := s.cache.Get(ctx, listCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Debug("todo list cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var todos []domain.Todo
	if err := json.Unmarshal(raw, &todos); err != nil {
		return nil, false
	}
	return todos, true
}

func (s *TodoService) storeList(ctx context.Context, userID int64, todos []domain.Todo) {
	raw, err := json.Marshal(todos)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, listCacheKey(userID), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("todo list cache write failed", zap.Error(err))
	}
}

func (s *TodoService) invalidateList(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listCacheKey(userID)).Err(); err != nil {
		s.logger.Debug("todo list cache invalidation failed", zap.Error(err))
	}
}

func (s *TodoService) publish(ctx context.Context, eventType events.EventType, todo *domain.Todo, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TodoID:    todo.ID,
		UserID:    todo.UserID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	})
}

func listCacheKey(userID int64) string {
	return fmt.Sprintf("todos:user:%d", userID)
}

func notFound(todoID int64) error {
	return apperrors.NewNotFound(fmt.Sprintf("Todo with ID %d not found", todoID))
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.NewValidationError("title must not be empty", nil)
	}
	if len(title) > maxTitleLength {
		return "", apperrors.NewValidationError(fmt.Sprintf("title must be at most %d characters", maxTitleLength), nil)
	}
	return title, nil
}

func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxDescriptionLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("description must be at most %d characters", maxDescriptionLength), nil)
	}
	return &trimmed, nil
}
