package slack

import (
	"context"

	"github.com/slack-go/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// Service provides outbound calls to the Slack platform. Every method takes a
// per-tenant bot token; an empty token falls back to the default token the
// service was constructed with (legacy single-workspace deployments).
type Service interface {
	// PostMessage posts a text message to a channel, optionally in a thread.
	// Returns the message timestamp.
	PostMessage(ctx context.Context, token, channelID, text, threadTS string) (string, error)

	// OpenModal opens a modal view for the given trigger ID. Trigger IDs
	// expire within seconds, so callers must issue this before any unrelated
	// blocking work.
	OpenModal(ctx context.Context, token, triggerID string, view slack.ModalViewRequest) error

	// GetPermalink fetches the permalink of a message
	GetPermalink(ctx context.Context, token, channelID, messageTS string) (string, error)

	// GetUserProfile fetches profile data of a Slack user
	GetUserProfile(ctx context.Context, token string, userID types.SlackUserID) (*UserProfile, error)

	// RespondTo delivers a message to a one-shot response URL. Response URLs
	// are not token-authenticated; they are tied to a single interaction.
	RespondTo(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error

	// ExchangeOAuthCode exchanges an OAuth authorization code for a workspace
	// bot token
	ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResult, error)
}

// UserProfile is the subset of a Slack user profile this system consumes
type UserProfile struct {
	ID        types.SlackUserID
	Name      string
	RealName  string
	Email     string
	AvatarURL string
}

// DisplayName returns the best human-readable name of the profile
func (p *UserProfile) DisplayName() string {
	if p.RealName != "" {
		return p.RealName
	}
	return p.Name
}

// OAuthResult is the outcome of a successful oauth.v2.access exchange
type OAuthResult struct {
	TeamID    types.TeamID
	TeamName  string
	BotToken  string
	BotUserID string
}
