package interfaces

import (
	"context"

	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// InstallationRepository provides persistence for Slack workspace
// installations, keyed uniquely by team ID.
type InstallationRepository interface {
	// Upsert creates or replaces the installation for its team ID. It must be
	// idempotent so that OAuth callback retries never create duplicates.
	Upsert(ctx context.Context, inst *model.Installation) error

	// GetByTeamID retrieves the installation for a team.
	// Returns ErrNotFound when the team has not installed the app.
	GetByTeamID(ctx context.Context, teamID types.TeamID) (*model.Installation, error)

	// List returns all installations
	List(ctx context.Context) ([]*model.Installation, error)
}
