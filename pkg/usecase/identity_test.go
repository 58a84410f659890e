package usecase_test

import (
	"context"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"github.com/taskdeck/taskdeck/pkg/repository/memory"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/usecase"
)

func TestIdentityResolver(t *testing.T) {
	t.Run("first contact creates a user from the Slack profile", func(t *testing.T) {
		repo := memory.New()
		svc := &slacksvc.Mock{
			GetUserProfileFunc: func(ctx context.Context, token string, userID types.SlackUserID) (*slacksvc.UserProfile, error) {
				return &slacksvc.UserProfile{
					ID:        userID,
					RealName:  "Alice Anderson",
					AvatarURL: "https://example.com/alice.png",
				}, nil
			},
		}
		uc := usecase.New(repo, usecase.WithSlackService(svc))

		user, err := uc.Identity.Resolve(context.Background(), "U0001", "T0001", "xoxb-token")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Name).Equal("Alice Anderson")
		gt.Value(t, user.AvatarURL).Equal("https://example.com/alice.png")
		gt.Value(t, user.SlackID).Equal(types.SlackUserID("U0001"))
		gt.Value(t, user.TeamID).Equal(types.TeamID("T0001"))
	})

	t.Run("repeated resolution returns the same record", func(t *testing.T) {
		repo := memory.New()
		svc := &slacksvc.Mock{}
		uc := usecase.New(repo, usecase.WithSlackService(svc))

		first, err := uc.Identity.Resolve(context.Background(), "U0002", "T0001", "xoxb-token")
		gt.NoError(t, err).Required()

		second, err := uc.Identity.Resolve(context.Background(), "U0002", "T0001", "xoxb-token")
		gt.NoError(t, err).Required()
		gt.Value(t, second.ID).Equal(first.ID)

		// Known users do not trigger another profile fetch
		gt.Array(t, svc.GetUserProfileCalls).Length(1)
	})

	t.Run("profile fetch failure still creates a placeholder user", func(t *testing.T) {
		repo := memory.New()
		svc := &slacksvc.Mock{
			GetUserProfileFunc: func(ctx context.Context, token string, userID types.SlackUserID) (*slacksvc.UserProfile, error) {
				return nil, errSlackDown
			},
		}
		uc := usecase.New(repo, usecase.WithSlackService(svc))

		user, err := uc.Identity.Resolve(context.Background(), "U0003", "T0001", "xoxb-token")
		gt.NoError(t, err).Required()
		gt.Value(t, user.Name).Equal("Slack User U0003")
		gt.Value(t, user.SlackID).Equal(types.SlackUserID("U0003"))
	})

	t.Run("concurrent resolutions converge on one record", func(t *testing.T) {
		repo := memory.New()
		svc := &slacksvc.Mock{}
		uc := usecase.New(repo, usecase.WithSlackService(svc))

		const workers = 16
		ids := make([]types.UserID, workers)

		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				user, err := uc.Identity.Resolve(context.Background(), "U0004", "T0001", "xoxb-token")
				if err == nil {
					ids[i] = user.ID
				}
			}(i)
		}
		wg.Wait()

		got, err := repo.User().GetBySlackID(context.Background(), "U0004")
		gt.NoError(t, err).Required()
		for _, id := range ids {
			gt.Value(t, id).Equal(got.ID)
		}
	})

	t.Run("empty slack ID is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithSlackService(&slacksvc.Mock{}))

		_, err := uc.Identity.Resolve(context.Background(), "", "T0001", "xoxb-token")
		gt.Error(t, err)
	})
}
