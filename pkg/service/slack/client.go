package slack

import (
	"context"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// ErrExternalAPI marks failures reported by the Slack platform. Callers decide
// whether to retry, fall back, or log-and-continue; the client never retries.
var ErrExternalAPI = goerr.New("slack api request failed")

func apiError(method string, cause error) error {
	return goerr.Wrap(ErrExternalAPI, "slack api call failed",
		goerr.V("method", method),
		goerr.V("slack_error", cause.Error()),
	)
}

// client implements Service
type client struct {
	defaultToken string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithOAuthConfig sets the OAuth client credentials used by ExchangeOAuthCode
func WithOAuthConfig(clientID, clientSecret, redirectURI string) Option {
	return func(c *client) {
		c.clientID = clientID
		c.clientSecret = clientSecret
		c.redirectURI = redirectURI
	}
}

// WithHTTPClient overrides the HTTP client used for OAuth exchange
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// New creates a new Slack service. defaultToken may be empty when every
// workspace is expected to have an installation record.
func New(defaultToken string, opts ...Option) Service {
	c := &client{
		defaultToken: defaultToken,
		httpClient:   http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// api resolves the effective token and returns an API client bound to it.
// This is the single place where the per-tenant/default two-level fallback
// lives.
func (c *client) api(token string) (*slack.Client, error) {
	if token == "" {
		token = c.defaultToken
	}
	if token == "" {
		return nil, goerr.New("no slack bot token available")
	}
	return slack.New(token), nil
}

func (c *client) PostMessage(ctx context.Context, token, channelID, text, threadTS string) (string, error) {
	api, err := c.api(token)
	if err != nil {
		return "", err
	}

	opts := []slack.MsgOption{slack.MsgOptionText(text, false)}
	if threadTS != "" {
		opts = append(opts, slack.MsgOptionTS(threadTS))
	}

	_, ts, err := api.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", apiError("chat.postMessage", err)
	}

	return ts, nil
}

func (c *client) OpenModal(ctx context.Context, token, triggerID string, view slack.ModalViewRequest) error {
	api, err := c.api(token)
	if err != nil {
		return err
	}

	if _, err := api.OpenViewContext(ctx, triggerID, view); err != nil {
		return apiError("views.open", err)
	}

	return nil
}

func (c *client) GetPermalink(ctx context.Context, token, channelID, messageTS string) (string, error) {
	api, err := c.api(token)
	if err != nil {
		return "", err
	}

	permalink, err := api.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      messageTS,
	})
	if err != nil {
		return "", apiError("chat.getPermalink", err)
	}

	return permalink, nil
}

func (c *client) GetUserProfile(ctx context.Context, token string, userID types.SlackUserID) (*UserProfile, error) {
	api, err := c.api(token)
	if err != nil {
		return nil, err
	}

	user, err := api.GetUserInfoContext(ctx, string(userID))
	if err != nil {
		return nil, apiError("users.info", err)
	}

	avatarURL := user.Profile.Image512
	if avatarURL == "" {
		avatarURL = user.Profile.Image192
	}

	return &UserProfile{
		ID:        types.SlackUserID(user.ID),
		Name:      user.Name,
		RealName:  user.RealName,
		Email:     user.Profile.Email,
		AvatarURL: avatarURL,
	}, nil
}

func (c *client) RespondTo(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error {
	if err := slack.PostWebhookContext(ctx, responseURL, msg); err != nil {
		return apiError("response_url", err)
	}
	return nil
}

func (c *client) ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResult, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, goerr.New("slack OAuth client credentials are not configured")
	}

	resp, err := slack.GetOAuthV2ResponseContext(ctx, c.httpClient, c.clientID, c.clientSecret, code, c.redirectURI)
	if err != nil {
		return nil, apiError("oauth.v2.access", err)
	}

	return &OAuthResult{
		TeamID:    types.TeamID(resp.Team.ID),
		TeamName:  resp.Team.Name,
		BotToken:  resp.AccessToken,
		BotUserID: resp.BotUserID,
	}, nil
}
