package interfaces

import (
	"context"

	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// UserRepository provides persistence for users. Slack-originated users are
// uniquely keyed by Slack user ID, web-registered users by email; both paths
// must converge on one record per person.
type UserRepository interface {
	// GetByID retrieves a user by internal ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id types.UserID) (*model.User, error)

	// GetBySlackID retrieves a user by Slack user ID. Returns ErrNotFound if absent.
	GetBySlackID(ctx context.Context, slackID types.SlackUserID) (*model.User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// UpsertBySlackID atomically creates the user if no record with the given
	// Slack ID exists, otherwise merges profile fields into the existing
	// record (existing non-empty fields win over empty updates). The
	// create-or-update decision must happen inside the storage layer's
	// atomicity boundary, never as a read-then-write in application code:
	// concurrent first-contact resolutions of one Slack ID must yield exactly
	// one record. Returns the stored user.
	UpsertBySlackID(ctx context.Context, user *model.User) (*model.User, error)
}
