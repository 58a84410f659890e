package types

import "fmt"

// TaskStatus represents the lifecycle status of a task
type TaskStatus string

const (
	TaskStatusTodo TaskStatus = "TODO"
	TaskStatusDone TaskStatus = "DONE"
)

// AllTaskStatuses returns all valid task statuses
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusTodo,
		TaskStatusDone,
	}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusDone:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to the given status is allowed.
// The only defined transition is TODO -> DONE; reopening is not supported.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	return s == TaskStatusTodo && next == TaskStatusDone
}

// String returns the string representation of the task status
func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus parses a string into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}
