package interfaces

import (
	"context"
	"time"

	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// TaskListFilter narrows task list queries. TeamID is always applied by the
// caller; the other fields are optional.
type TaskListFilter struct {
	Status     types.TaskStatus
	AssigneeID types.UserID
	DueAfter   *time.Time
	DueBefore  *time.Time
	Limit      int
}

// TaskRepository provides persistence for tasks
type TaskRepository interface {
	// Create stores a new task. The caller is responsible for referential
	// checks (creator/assignee existence).
	Create(ctx context.Context, task *model.Task) error

	// GetByID retrieves a task by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id types.TaskID) (*model.Task, error)

	// ListRecent returns up to limit tasks of the team, newest first
	ListRecent(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Task, error)

	// List returns the team's tasks matching the filter, newest first
	List(ctx context.Context, teamID types.TeamID, filter TaskListFilter) ([]*model.Task, error)

	// UpdateStatus sets the status of a task. Returns ErrNotFound if absent.
	UpdateStatus(ctx context.Context, id types.TaskID, status types.TaskStatus) error
}
