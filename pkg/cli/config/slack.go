package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds CLI flags for the Slack app credentials
type Slack struct {
	clientID      string
	clientSecret  string
	botToken      string
	signingSecret string
	redirectURI   string
}

func (x *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-client-id",
			Usage:       "Slack OAuth client ID",
			Category:    "Slack",
			Destination: &x.clientID,
			Sources:     cli.EnvVars("TASKDECK_SLACK_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:        "slack-client-secret",
			Usage:       "Slack OAuth client secret",
			Category:    "Slack",
			Destination: &x.clientSecret,
			Sources:     cli.EnvVars("TASKDECK_SLACK_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack Bot User OAuth Token (fallback for workspaces installed without OAuth)",
			Category:    "Slack",
			Destination: &x.botToken,
			Sources:     cli.EnvVars("TASKDECK_SLACK_BOT_TOKEN"),
		},
		&cli.StringFlag{
			Name:        "slack-signing-secret",
			Usage:       "Slack Signing Secret (for webhook verification)",
			Category:    "Slack",
			Destination: &x.signingSecret,
			Sources:     cli.EnvVars("TASKDECK_SLACK_SIGNING_SECRET"),
		},
		&cli.StringFlag{
			Name:        "slack-redirect-uri",
			Usage:       "OAuth redirect URI registered in the Slack app",
			Category:    "Slack",
			Destination: &x.redirectURI,
			Sources:     cli.EnvVars("TASKDECK_SLACK_REDIRECT_URI"),
		},
	}
}

func (x Slack) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client-id", x.clientID),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.Int("bot-token.len", len(x.botToken)),
		slog.Int("signing-secret.len", len(x.signingSecret)),
	)
}

// BotToken returns the fallback bot token
func (x *Slack) BotToken() string {
	return x.botToken
}

// SigningSecret returns the Slack signing secret
func (x *Slack) SigningSecret() string {
	return x.signingSecret
}

// IsWebhookConfigured checks if Slack webhook is configured
func (x *Slack) IsWebhookConfigured() bool {
	return x.signingSecret != ""
}

// IsOAuthConfigured checks if the OAuth credentials are complete
func (x *Slack) IsOAuthConfigured() bool {
	return x.clientID != "" && x.clientSecret != ""
}

// Configure builds the outbound Slack service
func (x *Slack) Configure() (slacksvc.Service, error) {
	if x.botToken == "" && !x.IsOAuthConfigured() {
		return nil, goerr.New("either slack-bot-token or slack-client-id/slack-client-secret is required")
	}

	opts := []slacksvc.Option{}
	if x.IsOAuthConfigured() {
		opts = append(opts, slacksvc.WithOAuthConfig(x.clientID, x.clientSecret, x.redirectURI))
	}

	return slacksvc.New(x.botToken, opts...), nil
}
