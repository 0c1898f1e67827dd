package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/todo-service/internal/domain"
)

// TodoFilter captures list query parameters. Every query is additionally
// scoped to the owning user; there is no unscoped access path.
type TodoFilter struct {
	Completed *bool
	Priority  *domain.TodoPriority
	DueStatus *domain.DueDateStatus
	SortField string
	SortOrder string
	Now       time.Time
}

// IsZero reports whether the filter applies no constraints beyond ownership
// and default ordering.
func (f TodoFilter) IsZero() bool {
	return f.Completed == nil && f.Priority == nil && f.DueStatus == nil &&
		(f.SortField == "" || f.SortField == "created_at") &&
		(f.SortOrder == "" || f.SortOrder == "desc")
}

// TodoRepository encapsulates todo persistence. All lookups require the owner
// id so a row belonging to another user is unreachable by construction.
type TodoRepository interface {
	Create(ctx context.Context, todo *domain.Todo) error
	Update(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, userID, todoID int64) error
	GetByID(ctx context.Context, userID, todoID int64) (*domain.Todo, error)
	ListByUser(ctx context.Context, userID int64, filter TodoFilter) ([]domain.Todo, error)
}

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation.
func NewTodoRepository(pool *pgxpool.Pool) TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	const query = `
        INSERT INTO todos (user_id, title, description, completed, due_date, priority)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.DueDate,
		todo.Priority,
	).Scan(&todo.ID, &todo.CreatedAt, &todo.UpdatedAt)
}

func (r *todoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	const query = `
        UPDATE todos SET title=$1, description=$2, completed=$3, due_date=$4, priority=$5, updated_at=NOW()
        WHERE id=$6 AND user_id=$7
        RETURNING updated_at`
	if err := r.pool.QueryRow(ctx, query,
		todo.Title,
		todo.Description,
		todo.Completed,
		todo.DueDate,
		todo.Priority,
		todo.ID,
		todo.UserID,
	).Scan(&todo.UpdatedAt); err != nil {
		return err
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, userID, todoID int64) error {
	const query = `DELETE FROM todos WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, todoID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *todoRepository) GetByID(ctx context.Context, userID, todoID int64) (*domain.Todo, error) {
	const query = `
        SELECT id, user_id, title, description, completed, due_date, priority, created_at, updated_at
        FROM todos WHERE id=$1 AND user_id=$2`
	var todo domain.Todo
	if err := r.pool.QueryRow(ctx, query, todoID, userID).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Description,
		&todo.Completed,
		&todo.DueDate,
		&todo.Priority,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) ListByUser(ctx context.Context, userID int64, filter TodoFilter) ([]domain.Todo, error) {
	base := `SELECT id, user_id, title, description, completed, due_date, priority, created_at, updated_at
             FROM todos`
	args := []any{userID}
	clauses := []string{"user_id=$1"}

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		clauses = append(clauses, fmt.Sprintf("completed=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.DueStatus != nil {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		today := now.UTC().Truncate(24 * time.Hour)
		tomorrow := today.Add(24 * time.Hour)

		switch *filter.DueStatus {
		case domain.DueDateStatusOverdue:
			args = append(args, today)
			clauses = append(clauses, fmt.Sprintf("due_date IS NOT NULL AND due_date < $%d", len(args)))
		case domain.DueDateStatusDueToday:
			args = append(args, today)
			fromIdx := len(args)
			args = append(args, tomorrow)
			clauses = append(clauses, fmt.Sprintf("due_date IS NOT NULL AND due_date >= $%d AND due_date < $%d", fromIdx, len(args)))
		case domain.DueDateStatusUpcoming:
			args = append(args, tomorrow)
			clauses = append(clauses, fmt.Sprintf("due_date IS NOT NULL AND due_date >= $%d", len(args)))
		case domain.DueDateStatusNoDueDate:
			clauses = append(clauses, "due_date IS NULL")
		}
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY %s %s",
		base, strings.Join(clauses, " AND "), sortColumn(filter.SortField), sortDirection(filter.SortOrder))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTodos(rows)
}

// sortColumn whitelists sortable columns; anything else falls back to created_at.
func sortColumn(field string) string {
	switch field {
	case "due_date", "priority", "created_at", "updated_at":
		return field
	}
	return "created_at"
}

func sortDirection(order string) string {
	if strings.EqualFold(order, "asc") {
		return "ASC"
	}
	return "DESC"
}

func scanTodos(rows pgx.Rows) ([]domain.Todo, error) {
	var result []domain.Todo
	for rows.Next() {
		var todo domain.Todo
		if err := rows.Scan(
			&todo.ID,
			&todo.UserID,
			&todo.Title,
			&todo.Description,
			&todo.Completed,
			&todo.DueDate,
			&todo.Priority,
			&todo.CreatedAt,
			&todo.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, todo)
	}
	return result, rows.Err()
}
