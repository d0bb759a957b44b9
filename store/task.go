package store

import (
	"context"
	"time"
)

// Task is a unit of work without a fixed start time. Once the planner
// schedules it, the resulting calendar entry is stored as an Event and
// the task is considered fulfilled; the record itself is kept.
type Task struct {
	ID        int32
	UID       string
	CreatorID int32
	CreatedTs int64

	Title string
	// Duration is the free-text duration descriptor as extracted from
	// the user's message, e.g. "3 часа" or "45 min".
	Duration   string
	DeadlineTs *int64
}

// FindTask is the find condition for task.
type FindTask struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	Limit  *int
	Offset *int
}

// CreateTask creates a new task.
func (s *Store) CreateTask(ctx context.Context, create *Task) (*Task, error) {
	return s.driver.CreateTask(ctx, create)
}

// ListTasks lists tasks with filter.
func (s *Store) ListTasks(ctx context.Context, find *FindTask) ([]*Task, error) {
	return s.driver.ListTasks(ctx, find)
}

// Deadline parses the task deadline to time.Time. Returns nil when the
// task has no deadline.
func (t *Task) Deadline() *time.Time {
	if t.DeadlineTs == nil {
		return nil
	}
	deadline := time.Unix(*t.DeadlineTs, 0)
	return &deadline
}
