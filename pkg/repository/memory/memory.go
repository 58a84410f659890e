package memory

import (
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
)

// Memory is an in-memory Repository implementation for development and tests.
// Upserts are serialized by each store's lock, which stands in for the atomic
// conditional writes of the production backend.
type Memory struct {
	installation *installationRepository
	user         *userRepository
	task         *taskRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		installation: newInstallationRepository(),
		user:         newUserRepository(),
		task:         newTaskRepository(),
	}
}

func (m *Memory) Installation() interfaces.InstallationRepository {
	return m.installation
}

func (m *Memory) User() interfaces.UserRepository {
	return m.user
}

func (m *Memory) Task() interfaces.TaskRepository {
	return m.task
}

func (m *Memory) Close() error {
	return nil
}
