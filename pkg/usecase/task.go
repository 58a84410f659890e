package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"github.com/taskdeck/taskdeck/pkg/service/taskcache"
)

// TaskUseCase owns task lifecycle operations and keeps the dashboard view
// cache coherent with writes.
type TaskUseCase struct {
	repo  interfaces.Repository
	cache *taskcache.Cache
}

func NewTaskUseCase(repo interfaces.Repository, cache *taskcache.Cache) *TaskUseCase {
	return &TaskUseCase{
		repo:  repo,
		cache: cache,
	}
}

// Create validates and persists a new task. The creator must exist, and when
// the task carries a workspace, every referenced user must belong to it.
func (uc *TaskUseCase) Create(ctx context.Context, task *model.Task) error {
	if task.Title == "" {
		return goerr.Wrap(ErrInvalidTask, "task title is required")
	}
	if !task.Status.IsValid() {
		return goerr.Wrap(ErrInvalidTask, "unknown status", goerr.V("status", task.Status))
	}
	if !task.Priority.IsValid() {
		return goerr.Wrap(ErrInvalidTask, "unknown priority", goerr.V("priority", task.Priority))
	}
	if task.CreatorID == "" {
		return goerr.Wrap(ErrInvalidTask, "task creator is required")
	}

	creator, err := uc.repo.User().GetByID(ctx, task.CreatorID)
	if err != nil {
		return goerr.Wrap(err, "failed to look up creator", goerr.V("user_id", task.CreatorID))
	}
	if err := checkTenant(task.TeamID, creator); err != nil {
		return err
	}

	if task.AssigneeID != "" && task.AssigneeID != task.CreatorID {
		assignee, err := uc.repo.User().GetByID(ctx, task.AssigneeID)
		if err != nil {
			return goerr.Wrap(err, "failed to look up assignee", goerr.V("user_id", task.AssigneeID))
		}
		if err := checkTenant(task.TeamID, assignee); err != nil {
			return err
		}
	}

	if err := uc.repo.Task().Create(ctx, task); err != nil {
		return goerr.Wrap(err, "failed to create task", goerr.V("task_id", task.ID))
	}

	uc.cache.Invalidate(task.TeamID)

	return nil
}

// ListRecent returns the newest tasks of a workspace, served via the view
// cache. Reads never fabricate data: a cache miss goes to the repository.
func (uc *TaskUseCase) ListRecent(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Task, error) {
	if tasks, ok := uc.cache.Get(teamID); ok {
		if limit > 0 && len(tasks) > limit {
			return tasks[:limit], nil
		}
		return tasks, nil
	}

	tasks, err := uc.repo.Task().ListRecent(ctx, teamID, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("team_id", teamID))
	}

	uc.cache.Put(teamID, tasks)

	return tasks, nil
}

// List returns tasks of a workspace matching a filter. Results never cross
// workspaces.
func (uc *TaskUseCase) List(ctx context.Context, teamID types.TeamID, filter interfaces.TaskListFilter) ([]*model.Task, error) {
	tasks, err := uc.repo.Task().List(ctx, teamID, filter)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("team_id", teamID))
	}
	return tasks, nil
}

// Complete transitions a task from TODO to DONE. DONE is terminal.
func (uc *TaskUseCase) Complete(ctx context.Context, id types.TaskID) (*model.Task, error) {
	task, err := uc.repo.Task().GetByID(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up task", goerr.V("task_id", id))
	}

	if !task.Status.CanTransitionTo(types.TaskStatusDone) {
		return nil, goerr.Wrap(ErrInvalidTransition, "cannot complete task",
			goerr.V("task_id", id),
			goerr.V("status", task.Status),
		)
	}

	if err := uc.repo.Task().UpdateStatus(ctx, id, types.TaskStatusDone); err != nil {
		return nil, goerr.Wrap(err, "failed to update task status", goerr.V("task_id", id))
	}
	task.Status = types.TaskStatusDone

	uc.cache.Invalidate(task.TeamID)

	return task, nil
}

func checkTenant(teamID types.TeamID, user *model.User) error {
	if teamID == "" || user.TeamID == "" {
		return nil
	}
	if user.TeamID != teamID {
		return goerr.Wrap(ErrTenantMismatch, "user belongs to another workspace",
			goerr.V("task_team_id", teamID),
			goerr.V("user_team_id", user.TeamID),
			goerr.V("user_id", user.ID),
		)
	}
	return nil
}

// IsNotFound reports whether err is a repository miss
func IsNotFound(err error) bool {
	return errors.Is(err, interfaces.ErrNotFound)
}
