package model

import (
	"time"

	"github.com/taskdeck/taskdeck/pkg/domain/types"
)

// Installation records a Slack workspace that installed the app via OAuth.
// Exactly one installation exists per team ID; re-installation replaces the
// stored token.
type Installation struct {
	TeamID      types.TeamID
	TeamName    string
	BotToken    string
	BotUserID   string
	InstalledAt time.Time
}

func NewInstallation(teamID types.TeamID, teamName, botToken, botUserID string) *Installation {
	return &Installation{
		TeamID:      teamID,
		TeamName:    teamName,
		BotToken:    botToken,
		BotUserID:   botUserID,
		InstalledAt: time.Now().UTC(),
	}
}
