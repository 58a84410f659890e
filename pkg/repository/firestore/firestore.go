package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
)

type Firestore struct {
	client       *firestore.Client
	installation *installationRepository
	user         *userRepository
	task         *taskRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, mainly for tests sharing
// one emulator project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.installation.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
		f.task.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		installation: newInstallationRepository(client),
		user:         newUserRepository(client),
		task:         newTaskRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Installation() interfaces.InstallationRepository {
	return f.installation
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Task() interfaces.TaskRepository {
	return f.task
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
