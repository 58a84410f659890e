package slack

import (
	"context"
	"sync"

	"github.com/slack-go/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// Mock is a Service implementation for tests. Each method delegates to the
// corresponding function field when set and records its call; unset methods
// succeed with zero values. Call recording is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	PostMessageFunc       func(ctx context.Context, token, channelID, text, threadTS string) (string, error)
	OpenModalFunc         func(ctx context.Context, token, triggerID string, view slack.ModalViewRequest) error
	GetPermalinkFunc      func(ctx context.Context, token, channelID, messageTS string) (string, error)
	GetUserProfileFunc    func(ctx context.Context, token string, userID types.SlackUserID) (*UserProfile, error)
	RespondToFunc         func(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error
	ExchangeOAuthCodeFunc func(ctx context.Context, code string) (*OAuthResult, error)

	PostMessageCalls []struct {
		Token, ChannelID, Text, ThreadTS string
	}
	OpenModalCalls []struct {
		Token, TriggerID string
		View             slack.ModalViewRequest
	}
	GetPermalinkCalls []struct {
		Token, ChannelID, MessageTS string
	}
	GetUserProfileCalls []struct {
		Token  string
		UserID types.SlackUserID
	}
	RespondToCalls []struct {
		ResponseURL string
		Msg         *slack.WebhookMessage
	}
	ExchangeOAuthCodeCalls []string
}

var _ Service = &Mock{}

func (m *Mock) PostMessage(ctx context.Context, token, channelID, text, threadTS string) (string, error) {
	m.mu.Lock()
	m.PostMessageCalls = append(m.PostMessageCalls, struct {
		Token, ChannelID, Text, ThreadTS string
	}{token, channelID, text, threadTS})
	m.mu.Unlock()
	if m.PostMessageFunc != nil {
		return m.PostMessageFunc(ctx, token, channelID, text, threadTS)
	}
	return "1234567890.000001", nil
}

func (m *Mock) OpenModal(ctx context.Context, token, triggerID string, view slack.ModalViewRequest) error {
	m.mu.Lock()
	m.OpenModalCalls = append(m.OpenModalCalls, struct {
		Token, TriggerID string
		View             slack.ModalViewRequest
	}{token, triggerID, view})
	m.mu.Unlock()
	if m.OpenModalFunc != nil {
		return m.OpenModalFunc(ctx, token, triggerID, view)
	}
	return nil
}

func (m *Mock) GetPermalink(ctx context.Context, token, channelID, messageTS string) (string, error) {
	m.mu.Lock()
	m.GetPermalinkCalls = append(m.GetPermalinkCalls, struct {
		Token, ChannelID, MessageTS string
	}{token, channelID, messageTS})
	m.mu.Unlock()
	if m.GetPermalinkFunc != nil {
		return m.GetPermalinkFunc(ctx, token, channelID, messageTS)
	}
	return "", nil
}

func (m *Mock) GetUserProfile(ctx context.Context, token string, userID types.SlackUserID) (*UserProfile, error) {
	m.mu.Lock()
	m.GetUserProfileCalls = append(m.GetUserProfileCalls, struct {
		Token  string
		UserID types.SlackUserID
	}{token, userID})
	m.mu.Unlock()
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, token, userID)
	}
	return &UserProfile{ID: userID, Name: string(userID)}, nil
}

func (m *Mock) RespondTo(ctx context.Context, responseURL string, msg *slack.WebhookMessage) error {
	m.mu.Lock()
	m.RespondToCalls = append(m.RespondToCalls, struct {
		ResponseURL string
		Msg         *slack.WebhookMessage
	}{responseURL, msg})
	m.mu.Unlock()
	if m.RespondToFunc != nil {
		return m.RespondToFunc(ctx, responseURL, msg)
	}
	return nil
}

func (m *Mock) ExchangeOAuthCode(ctx context.Context, code string) (*OAuthResult, error) {
	m.mu.Lock()
	m.ExchangeOAuthCodeCalls = append(m.ExchangeOAuthCodeCalls, code)
	m.mu.Unlock()
	if m.ExchangeOAuthCodeFunc != nil {
		return m.ExchangeOAuthCodeFunc(ctx, code)
	}
	return &OAuthResult{}, nil
}
