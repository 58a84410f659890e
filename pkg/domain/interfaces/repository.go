package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Installation() InstallationRepository
	User() UserRepository
	Task() TaskRepository

	Close() error
}
