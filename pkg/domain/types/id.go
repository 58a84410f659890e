package types

import "github.com/google/uuid"

// TaskID is the internal identifier of a task
type TaskID string

// NewTaskID generates a new random task ID
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

func (x TaskID) String() string { return string(x) }

// UserID is the internal identifier of a user
type UserID string

// NewUserID generates a new random user ID
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

func (x UserID) String() string { return string(x) }

// TeamID identifies one Slack workspace (tenant). Empty means no tenant
// context, i.e. the legacy single-workspace deployment.
type TeamID string

func (x TeamID) String() string { return string(x) }

// SlackUserID is the Slack-side identifier of a user (e.g. "U0123ABCD")
type SlackUserID string

func (x SlackUserID) String() string { return string(x) }
