package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
)

// InstallationUseCase manages per-workspace Slack installations and
// resolves which bot token to use for outbound calls.
type InstallationUseCase struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	defaultToken string
}

func NewInstallationUseCase(repo interfaces.Repository, svc slacksvc.Service, defaultToken string) *InstallationUseCase {
	return &InstallationUseCase{
		repo:         repo,
		slackService: svc,
		defaultToken: defaultToken,
	}
}

// HandleOAuthCallback exchanges a temporary OAuth code for a bot token and
// stores the installation keyed by workspace. Re-installing the app for the
// same workspace replaces the stored token rather than adding a row.
func (uc *InstallationUseCase) HandleOAuthCallback(ctx context.Context, code string) (*model.Installation, error) {
	if code == "" {
		return nil, goerr.New("oauth callback without code parameter")
	}
	if uc.slackService == nil {
		return nil, goerr.New("slack service is not configured")
	}

	result, err := uc.slackService.ExchangeOAuthCode(ctx, code)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to exchange oauth code")
	}
	if result.TeamID == "" {
		return nil, goerr.New("oauth response has no team ID")
	}

	install := model.NewInstallation(result.TeamID, result.TeamName, result.BotToken, result.BotUserID)
	if err := uc.repo.Installation().Upsert(ctx, install); err != nil {
		return nil, goerr.Wrap(err, "failed to store installation", goerr.V("team_id", result.TeamID))
	}

	logging.From(ctx).Info("slack workspace installed",
		"team_id", install.TeamID,
		"team_name", install.TeamName,
	)

	return install, nil
}

// ResolveToken returns the bot token for a workspace. It prefers the stored
// installation and falls back to the statically configured token when the
// workspace has never gone through OAuth.
func (uc *InstallationUseCase) ResolveToken(ctx context.Context, teamID types.TeamID) (string, error) {
	if teamID != "" {
		install, err := uc.repo.Installation().GetByTeamID(ctx, teamID)
		switch {
		case err == nil:
			if install.BotToken != "" {
				return install.BotToken, nil
			}
		case !errors.Is(err, interfaces.ErrNotFound):
			return "", goerr.Wrap(err, "failed to look up installation", goerr.V("team_id", teamID))
		}
	}

	if uc.defaultToken != "" {
		return uc.defaultToken, nil
	}

	return "", goerr.Wrap(ErrNoBotToken, "resolve token", goerr.V("team_id", teamID))
}

// Seed stores pre-provisioned installations from configuration. Used to
// bootstrap workspaces that were installed before OAuth persistence existed.
func (uc *InstallationUseCase) Seed(ctx context.Context, installs []*model.Installation) error {
	for _, install := range installs {
		if install.TeamID == "" {
			return goerr.New("seed installation without team ID")
		}
		if err := uc.repo.Installation().Upsert(ctx, install); err != nil {
			return goerr.Wrap(err, "failed to seed installation", goerr.V("team_id", install.TeamID))
		}
	}
	return nil
}
