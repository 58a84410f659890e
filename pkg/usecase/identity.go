package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
	"golang.org/x/sync/singleflight"
)

// IdentityResolver maps Slack user IDs to dashboard user records, creating a
// record on first contact. Concurrent resolutions of the same Slack user are
// collapsed so that exactly one record exists per person.
type IdentityResolver struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	group        singleflight.Group
}

func NewIdentityResolver(repo interfaces.Repository, svc slacksvc.Service) *IdentityResolver {
	return &IdentityResolver{
		repo:         repo,
		slackService: svc,
	}
}

// Resolve returns the dashboard user for a Slack user ID. When the user is
// unknown, the Slack profile is fetched and a new record is created. A failed
// profile fetch still yields a record with a placeholder name, so that task
// creation never blocks on the Slack API.
func (r *IdentityResolver) Resolve(ctx context.Context, slackID types.SlackUserID, teamID types.TeamID, botToken string) (*model.User, error) {
	if slackID == "" {
		return nil, goerr.New("empty slack user ID")
	}

	user, err := r.repo.User().GetBySlackID(ctx, slackID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, interfaces.ErrNotFound) {
		return nil, goerr.Wrap(err, "failed to look up user", goerr.V("slack_user_id", slackID))
	}

	v, err, _ := r.group.Do(string(slackID), func() (any, error) {
		return r.createFromSlack(ctx, slackID, teamID, botToken)
	})
	if err != nil {
		return nil, err
	}

	return v.(*model.User), nil
}

func (r *IdentityResolver) createFromSlack(ctx context.Context, slackID types.SlackUserID, teamID types.TeamID, botToken string) (*model.User, error) {
	candidate := model.NewUser(placeholderName(slackID))
	candidate.SlackID = slackID
	candidate.TeamID = teamID

	if r.slackService != nil && botToken != "" {
		profile, err := r.slackService.GetUserProfile(ctx, botToken, slackID)
		if err != nil {
			logging.From(ctx).Warn("failed to fetch slack profile, using placeholder",
				"slack_user_id", slackID,
				"error", err,
			)
		} else {
			if name := profile.DisplayName(); name != "" {
				candidate.Name = name
			}
			candidate.AvatarURL = profile.AvatarURL
		}
	}

	user, err := r.repo.User().UpsertBySlackID(ctx, candidate)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to upsert user", goerr.V("slack_user_id", slackID))
	}

	return user, nil
}

func placeholderName(slackID types.SlackUserID) string {
	return fmt.Sprintf("Slack User %s", slackID)
}
