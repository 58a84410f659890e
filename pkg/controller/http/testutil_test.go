package http_test

import (
	"context"
	"errors"

	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

var errServiceDown = errors.New("slack is unavailable")

func seedUser(slackID types.SlackUserID, name string, teamID types.TeamID) *model.User {
	user := model.NewUser(name)
	user.SlackID = slackID
	user.TeamID = teamID
	return user
}

func createSeedTask(ctx context.Context, repo interfaces.Repository, teamID types.TeamID, title string, creatorID types.UserID) error {
	task := model.NewTask(title)
	task.TeamID = teamID
	task.CreatorID = creatorID
	task.AssigneeID = creatorID
	return repo.Task().Create(ctx, task)
}
