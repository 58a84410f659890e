package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

type userRepository struct {
	mu      sync.Mutex
	users   map[types.UserID]*model.User
	bySlack map[types.SlackUserID]types.UserID
	byEmail map[string]types.UserID
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository() *userRepository {
	return &userRepository{
		users:   make(map[types.UserID]*model.User),
		bySlack: make(map[types.SlackUserID]types.UserID),
		byEmail: make(map[string]types.UserID),
	}
}

func copyUser(u *model.User) *model.User {
	copied := *u
	return &copied
}

func (r *userRepository) GetByID(ctx context.Context, id types.UserID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("id", id))
	}

	return copyUser(user), nil
}

func (r *userRepository) GetBySlackID(ctx context.Context, slackID types.SlackUserID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.bySlack[slackID]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("slackID", slackID))
	}

	return copyUser(r.users[id]), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, exists := r.byEmail[email]
	if !exists {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("email", email))
	}

	return copyUser(r.users[id]), nil
}

// UpsertBySlackID creates or merges under the store lock, so two racing
// first-contact resolutions of the same Slack ID converge on one record.
func (r *userRepository) UpsertBySlackID(ctx context.Context, user *model.User) (*model.User, error) {
	if user.SlackID == "" {
		return nil, goerr.New("slack ID is required for upsert")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, exists := r.bySlack[user.SlackID]; exists {
		existing := r.users[id]
		existing.Merge(user)
		if existing.Email != "" {
			r.byEmail[existing.Email] = existing.ID
		}
		return copyUser(existing), nil
	}

	created := copyUser(user)
	if created.ID == "" {
		created.ID = types.NewUserID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	r.users[created.ID] = created
	r.bySlack[created.SlackID] = created.ID
	if created.Email != "" {
		r.byEmail[created.Email] = created.ID
	}

	return copyUser(created), nil
}
