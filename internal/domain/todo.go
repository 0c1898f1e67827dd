package domain

import "time"

// TodoPriority enumerates urgency levels.
type TodoPriority string

const (
	TodoPriorityHigh   TodoPriority = "high"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityLow    TodoPriority = "low"
)

// Valid reports whether the priority is one of the known levels.
func (p TodoPriority) Valid() bool {
	switch p {
	case TodoPriorityHigh, TodoPriorityMedium, TodoPriorityLow:
		return true
	}
	return false
}

// DueDateStatus is computed from the due date relative to the current day.
type DueDateStatus string

const (
	DueDateStatusOverdue   DueDateStatus = "overdue"
	DueDateStatusDueToday  DueDateStatus = "due_today"
	DueDateStatusUpcoming  DueDateStatus = "upcoming"
	DueDateStatusNoDueDate DueDateStatus = "no_due_date"
)

// Valid reports whether the status is one of the known values.
func (s DueDateStatus) Valid() bool {
	switch s {
	case DueDateStatusOverdue, DueDateStatusDueToday, DueDateStatusUpcoming, DueDateStatusNoDueDate:
		return true
	}
	return false
}

// Todo is the aggregate for a user's task. Every todo carries the owner's
// user id, set at creation and never reassigned.
type Todo struct {
	ID          int64
	UserID      int64
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Priority    TodoPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DueStatusAt computes the due date status of the todo as of now. Comparison
// is by calendar day in UTC.
func (t *Todo) DueStatusAt(now time.Time) DueDateStatus {
	return ComputeDueStatus(t.DueDate, now)
}

// ComputeDueStatus classifies a due date relative to the given time.
func ComputeDueStatus(dueDate *time.Time, now time.Time) DueDateStatus {
	if dueDate == nil {
		return DueDateStatusNoDueDate
	}
	today := now.UTC().Truncate(24 * time.Hour)
	dueDay := dueDate.UTC().Truncate(24 * time.Hour)
	switch {
	case dueDay.Before(today):
		return DueDateStatusOverdue
	case dueDay.Equal(today):
		return DueDateStatusDueToday
	default:
		return DueDateStatusUpcoming
	}
}
