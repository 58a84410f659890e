package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Workspaces holds the CLI flag for the pre-provisioned workspace file. The
// file seeds installation records for workspaces that were installed before
// OAuth persistence existed.
type Workspaces struct {
	path string
}

func (x *Workspaces) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "workspaces",
			Usage:       "Path to TOML file with pre-provisioned workspace installations",
			Category:    "Slack",
			Sources:     cli.EnvVars("TASKDECK_WORKSPACES"),
			Destination: &x.path,
		},
	}
}

type workspaceEntry struct {
	TeamID    string `toml:"team_id"`
	TeamName  string `toml:"team_name"`
	BotToken  string `toml:"bot_token"`
	BotUserID string `toml:"bot_user_id"`
}

type workspaceFile struct {
	Workspaces []workspaceEntry `toml:"workspace"`
}

// Load reads the workspace file. A missing flag yields an empty list.
func (x *Workspaces) Load() ([]*model.Installation, error) {
	if x.path == "" {
		return nil, nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(x.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read workspace file", goerr.V("path", x.path))
	}

	var file workspaceFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML workspace file", goerr.V("path", x.path))
	}

	installs := make([]*model.Installation, 0, len(file.Workspaces))
	for _, entry := range file.Workspaces {
		if entry.TeamID == "" {
			return nil, goerr.New("workspace entry without team_id", goerr.V("path", x.path))
		}
		installs = append(installs, &model.Installation{
			TeamID:      types.TeamID(entry.TeamID),
			TeamName:    entry.TeamName,
			BotToken:    entry.BotToken,
			BotUserID:   entry.BotUserID,
			InstalledAt: time.Now().UTC(),
		})
	}

	return installs, nil
}
