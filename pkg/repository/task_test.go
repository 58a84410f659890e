package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"github.com/taskdeck/taskdeck/pkg/repository/firestore"
	"github.com/taskdeck/taskdeck/pkg/repository/memory"
)

func newFirestoreRepo(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	repo, err := firestore.New(context.Background(), projectID, os.Getenv("TEST_FIRESTORE_DATABASE_ID"),
		firestore.WithCollectionPrefix("test_"+uuid.NewString()[:8]))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func newTask(teamID types.TeamID, title string) *model.Task {
	task := model.NewTask(title)
	task.TeamID = teamID
	task.CreatorID = types.NewUserID()
	return task
}

func runTaskRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const teamID = types.TeamID("T0001")

	t.Run("Create and GetByID round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
		task := newTask(teamID, "Fix login bug")
		task.Description = "Users cannot log in with SSO"
		task.Priority = types.PriorityP1
		task.DueDate = &due
		task.SlackChannelID = "C123"
		task.SlackMessageTS = "1725000000.000100"
		task.SlackPermalink = "https://slack.com/archives/C123/p1725000000000100"

		gt.NoError(t, repo.Task().Create(ctx, task)).Required()

		got, err := repo.Task().GetByID(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Title).Equal(task.Title)
		gt.Value(t, got.Description).Equal(task.Description)
		gt.Value(t, got.Status).Equal(types.TaskStatusTodo)
		gt.Value(t, got.Priority).Equal(types.PriorityP1)
		gt.Value(t, got.TeamID).Equal(teamID)
		gt.Value(t, got.SlackPermalink).Equal(task.SlackPermalink)
		gt.Value(t, got.DueDate).NotNil()
		gt.Bool(t, got.DueDate.Equal(due)).True()
	})

	t.Run("GetByID returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Task().GetByID(ctx, types.NewTaskID())
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("ListRecent returns newest first and respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			task := newTask(teamID, fmt.Sprintf("task-%d", i))
			task.CreatedAt = time.Date(2026, 9, 1, 10, i, 0, 0, time.UTC)
			gt.NoError(t, repo.Task().Create(ctx, task)).Required()
		}

		tasks, err := repo.Task().ListRecent(ctx, teamID, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(3)
		gt.Value(t, tasks[0].Title).Equal("task-4")
		gt.Value(t, tasks[1].Title).Equal("task-3")
		gt.Value(t, tasks[2].Title).Equal("task-2")
	})

	t.Run("ListRecent never crosses workspaces", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Task().Create(ctx, newTask(teamID, "ours"))).Required()
		gt.NoError(t, repo.Task().Create(ctx, newTask("T9999", "theirs"))).Required()

		tasks, err := repo.Task().ListRecent(ctx, teamID, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Title).Equal("ours")
	})

	t.Run("List filters by status and assignee", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		assignee := types.NewUserID()

		todo := newTask(teamID, "open one")
		todo.AssigneeID = assignee
		gt.NoError(t, repo.Task().Create(ctx, todo)).Required()

		done := newTask(teamID, "closed one")
		done.AssigneeID = assignee
		gt.NoError(t, repo.Task().Create(ctx, done)).Required()
		gt.NoError(t, repo.Task().UpdateStatus(ctx, done.ID, types.TaskStatusDone)).Required()

		other := newTask(teamID, "someone else")
		gt.NoError(t, repo.Task().Create(ctx, other)).Required()

		tasks, err := repo.Task().List(ctx, teamID, interfaces.TaskListFilter{
			Status:     types.TaskStatusTodo,
			AssigneeID: assignee,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Title).Equal("open one")
	})

	t.Run("List filters by due date window", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mkDue := func(day int) *time.Time {
			d := time.Date(2026, 9, day, 12, 0, 0, 0, time.UTC)
			return &d
		}

		early := newTask(teamID, "early")
		early.DueDate = mkDue(5)
		gt.NoError(t, repo.Task().Create(ctx, early)).Required()

		mid := newTask(teamID, "mid")
		mid.DueDate = mkDue(15)
		gt.NoError(t, repo.Task().Create(ctx, mid)).Required()

		late := newTask(teamID, "late")
		late.DueDate = mkDue(25)
		gt.NoError(t, repo.Task().Create(ctx, late)).Required()

		after := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		before := time.Date(2026, 9, 20, 0, 0, 0, 0, time.UTC)
		tasks, err := repo.Task().List(ctx, teamID, interfaces.TaskListFilter{
			DueAfter:  &after,
			DueBefore: &before,
		})
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Title).Equal("mid")
	})

	t.Run("UpdateStatus transitions TODO to DONE", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		task := newTask(teamID, "finish me")
		gt.NoError(t, repo.Task().Create(ctx, task)).Required()

		gt.NoError(t, repo.Task().UpdateStatus(ctx, task.ID, types.TaskStatusDone)).Required()

		got, err := repo.Task().GetByID(ctx, task.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.TaskStatusDone)
	})

	t.Run("UpdateStatus on unknown task returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		err := repo.Task().UpdateStatus(ctx, types.NewTaskID(), types.TaskStatusDone)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}

func TestTaskRepository_Memory(t *testing.T) {
	runTaskRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestTaskRepository_Firestore(t *testing.T) {
	runTaskRepositoryTest(t, newFirestoreRepo)
}
