package model

import (
	"time"

	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// Task represents a tracked task. Tasks are created either from the dashboard
// or through the Slack integration; the Slack* fields carry the correlation
// back to the originating message when the latter.
type Task struct {
	ID          types.TaskID
	Title       string
	Description string
	Status      types.TaskStatus
	Priority    types.Priority
	DueDate     *time.Time
	AssigneeID  types.UserID
	CreatorID   types.UserID
	TeamID      types.TeamID

	SlackChannelID string
	SlackMessageTS string
	SlackPermalink string

	CreatedAt time.Time
}

// NewTask creates a task with a fresh ID in the initial TODO state
func NewTask(title string) *Task {
	return &Task{
		ID:        types.NewTaskID(),
		Title:     title,
		Status:    types.TaskStatusTodo,
		Priority:  types.DefaultPriority,
		CreatedAt: time.Now().UTC(),
	}
}
