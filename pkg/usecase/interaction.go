package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	modelslack "github.com/taskdeck/taskdeck/pkg/domain/model/slack"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

const (
	commandCreateTask = "/task"
	commandListTasks  = "/tasks"

	recentTaskCount = 10
)

// InteractionUseCase handles slash commands, shortcuts, message actions and
// modal submissions.
type InteractionUseCase struct {
	repo         interfaces.Repository
	slackService slacksvc.Service
	installation *InstallationUseCase
	identity     *IdentityResolver
	tasks        *TaskUseCase
}

func NewInteractionUseCase(repo interfaces.Repository, svc slacksvc.Service, installation *InstallationUseCase, identity *IdentityResolver, tasks *TaskUseCase) *InteractionUseCase {
	return &InteractionUseCase{
		repo:         repo,
		slackService: svc,
		installation: installation,
		identity:     identity,
		tasks:        tasks,
	}
}

// HandleSlashCommand dispatches a slash command. Unknown commands are ignored.
func (uc *InteractionUseCase) HandleSlashCommand(ctx context.Context, cmd slack.SlashCommand) error {
	switch cmd.Command {
	case commandCreateTask:
		return uc.handleCreateCommand(ctx, cmd)
	case commandListTasks:
		return uc.handleListCommand(ctx, cmd)
	default:
		logging.From(ctx).Debug("ignoring slash command", "command", cmd.Command)
		return nil
	}
}

// handleCreateCommand opens the task creation modal with the command text as
// the initial title.
func (uc *InteractionUseCase) handleCreateCommand(ctx context.Context, cmd slack.SlashCommand) error {
	token := uc.tokenFor(ctx, types.TeamID(cmd.TeamID))

	view := slacksvc.BuildTaskModal(strings.TrimSpace(cmd.Text), "", cmd.ChannelID, cmd.ResponseURL)
	if err := uc.slackService.OpenModal(ctx, token, cmd.TriggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open task modal", goerr.V("team_id", cmd.TeamID))
	}
	return nil
}

// handleListCommand posts the newest tasks of the workspace. When the read
// fails, the user still gets a message instead of silence.
func (uc *InteractionUseCase) handleListCommand(ctx context.Context, cmd slack.SlashCommand) error {
	token := uc.tokenFor(ctx, types.TeamID(cmd.TeamID))

	tasks, err := uc.tasks.ListRecent(ctx, types.TeamID(cmd.TeamID), recentTaskCount)
	if err != nil {
		uc.deliver(ctx, token, cmd.ResponseURL, cmd.ChannelID,
			"Sorry, I couldn't fetch the task list. Please try again.")
		return goerr.Wrap(err, "failed to list tasks for slash command")
	}

	uc.deliver(ctx, token, cmd.ResponseURL, cmd.ChannelID, uc.formatTaskList(ctx, tasks))
	return nil
}

// HandleMessageAction opens a prefilled task modal from a message context
// menu action. The permalink fetch is best effort: a failure degrades to a
// modal without a source link.
func (uc *InteractionUseCase) HandleMessageAction(ctx context.Context, callback *slack.InteractionCallback) error {
	token := uc.tokenFor(ctx, types.TeamID(callback.Team.ID))

	permalink, err := uc.slackService.GetPermalink(ctx, token, callback.Channel.ID, callback.Message.Timestamp)
	if err != nil {
		logging.From(ctx).Warn("failed to fetch message permalink",
			"channel", callback.Channel.ID,
			"error", err,
		)
		permalink = ""
	}

	view := slacksvc.BuildTaskModal(strings.TrimSpace(callback.Message.Text), permalink, callback.Channel.ID, callback.ResponseURL)
	if err := uc.slackService.OpenModal(ctx, token, callback.TriggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open task modal from message action")
	}
	return nil
}

// HandleShortcut opens a blank task modal from a global shortcut
func (uc *InteractionUseCase) HandleShortcut(ctx context.Context, callback *slack.InteractionCallback) error {
	token := uc.tokenFor(ctx, types.TeamID(callback.Team.ID))

	view := slacksvc.BuildTaskModal("", "", "", "")
	if err := uc.slackService.OpenModal(ctx, token, callback.TriggerID, view); err != nil {
		return goerr.Wrap(err, "failed to open task modal from shortcut")
	}
	return nil
}

// HandleViewSubmission validates a submitted task modal and creates the task.
// A validation failure returns an errors response that keeps the modal open;
// success returns a clear response and posts a confirmation to the
// originating conversation.
func (uc *InteractionUseCase) HandleViewSubmission(ctx context.Context, callback *slack.InteractionCallback) (*slack.ViewSubmissionResponse, error) {
	if callback.View.CallbackID != slacksvc.TaskModalCallbackID {
		logging.From(ctx).Debug("ignoring view submission", "callback_id", callback.View.CallbackID)
		return slack.NewClearViewSubmissionResponse(), nil
	}

	values := callback.View.State.Values
	title := strings.TrimSpace(values[slacksvc.BlockIDTitle][slacksvc.ActionIDTitle].Value)
	description := strings.TrimSpace(values[slacksvc.BlockIDDescription][slacksvc.ActionIDDescription].Value)
	assigneeSlackID := values[slacksvc.BlockIDAssignee][slacksvc.ActionIDAssignee].SelectedUser
	dueDateStr := values[slacksvc.BlockIDDueDate][slacksvc.ActionIDDueDate].SelectedDate
	priorityStr := values[slacksvc.BlockIDPriority][slacksvc.ActionIDPriority].SelectedOption.Value

	if assigneeSlackID == "" {
		return slack.NewErrorsViewSubmissionResponse(map[string]string{
			slacksvc.BlockIDAssignee: "Please select an assignee",
		}), nil
	}
	if title == "" {
		return slack.NewErrorsViewSubmissionResponse(map[string]string{
			slacksvc.BlockIDTitle: "Please enter a title",
		}), nil
	}

	metadata, err := modelslack.DecodeViewMetadata(callback.View.PrivateMetadata)
	if err != nil {
		logging.From(ctx).Warn("failed to decode view metadata", "error", err)
		metadata = modelslack.ViewMetadata{}
	}

	teamID := types.TeamID(callback.Team.ID)
	token := uc.tokenFor(ctx, teamID)

	creator, assignee, err := uc.resolveParticipants(ctx,
		types.SlackUserID(callback.User.ID), types.SlackUserID(assigneeSlackID), teamID, token)
	if err != nil {
		return nil, err
	}

	dueDate, err := parseDueDate(dueDateStr)
	if err != nil {
		return slack.NewErrorsViewSubmissionResponse(map[string]string{
			slacksvc.BlockIDDueDate: "Please pick a valid date",
		}), nil
	}

	priority, err := types.ParsePriority(priorityStr)
	if err != nil {
		return slack.NewErrorsViewSubmissionResponse(map[string]string{
			slacksvc.BlockIDPriority: "Please pick a valid priority",
		}), nil
	}

	task := model.NewTask(title)
	task.Description = description
	task.Priority = priority
	task.DueDate = dueDate
	task.CreatorID = creator.ID
	task.AssigneeID = assignee.ID
	task.TeamID = teamID
	task.SlackChannelID = metadata.ChannelID
	task.SlackPermalink = metadata.SourcePermalink

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("task created from modal",
		"task_id", task.ID,
		"team_id", teamID,
	)

	uc.postConfirmation(ctx, token, metadata, task, assignee)

	return slack.NewClearViewSubmissionResponse(), nil
}

// resolveParticipants resolves creator and assignee concurrently. When both
// are the same Slack user a single resolution is shared.
func (uc *InteractionUseCase) resolveParticipants(ctx context.Context, creatorSlackID, assigneeSlackID types.SlackUserID, teamID types.TeamID, token string) (creator, assignee *model.User, err error) {
	if creatorSlackID == assigneeSlackID {
		user, err := uc.identity.Resolve(ctx, creatorSlackID, teamID, token)
		if err != nil {
			return nil, nil, err
		}
		return user, user, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		u, err := uc.identity.Resolve(egCtx, creatorSlackID, teamID, token)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve creator")
		}
		creator = u
		return nil
	})
	eg.Go(func() error {
		u, err := uc.identity.Resolve(egCtx, assigneeSlackID, teamID, token)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve assignee")
		}
		assignee = u
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	return creator, assignee, nil
}

// postConfirmation announces the created task in the originating
// conversation. Delivery is best effort and prefers the one-shot response URL
// over a channel post.
func (uc *InteractionUseCase) postConfirmation(ctx context.Context, token string, metadata modelslack.ViewMetadata, task *model.Task, assignee *model.User) {
	text := fmt.Sprintf("✅ *Task Created:* \"%s\"\n👤 *Assigned to:* %s", task.Title, assignee.Name)
	if task.DueDate != nil {
		text += fmt.Sprintf("\n📅 *Due:* %s", task.DueDate.Format("2006-01-02"))
	}

	if metadata.ResponseURL != "" {
		msg := &slack.WebhookMessage{
			Text:         text,
			ResponseType: slack.ResponseTypeInChannel,
		}
		err := uc.slackService.RespondTo(ctx, metadata.ResponseURL, msg)
		if err == nil {
			return
		}
		logging.From(ctx).Warn("failed to deliver confirmation via response URL",
			"error", err,
		)
	}

	if metadata.ChannelID == "" {
		return
	}
	if _, err := uc.slackService.PostMessage(ctx, token, metadata.ChannelID, text, ""); err != nil {
		logging.From(ctx).Warn("failed to deliver confirmation to channel",
			"channel", metadata.ChannelID,
			"error", err,
		)
	}
}

// deliver sends text through a response URL when available, otherwise posts
// to the channel. Failures are logged, never surfaced to Slack.
func (uc *InteractionUseCase) deliver(ctx context.Context, token, responseURL, channelID, text string) {
	if responseURL != "" {
		msg := &slack.WebhookMessage{
			Text:         text,
			ResponseType: slack.ResponseTypeEphemeral,
		}
		err := uc.slackService.RespondTo(ctx, responseURL, msg)
		if err == nil {
			return
		}
		logging.From(ctx).Warn("failed to deliver via response URL", "error", err)
	}

	if channelID == "" {
		return
	}
	if _, err := uc.slackService.PostMessage(ctx, token, channelID, text, ""); err != nil {
		logging.From(ctx).Warn("failed to deliver to channel",
			"channel", channelID,
			"error", err,
		)
	}
}

func (uc *InteractionUseCase) formatTaskList(ctx context.Context, tasks []*model.Task) string {
	if len(tasks) == 0 {
		return "No tasks found! Use `/task` to create one."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Current Tasks (Last %d):*\n", recentTaskCount)
	for _, task := range tasks {
		marker := "⏳"
		if task.Status == types.TaskStatusDone {
			marker = "✅"
		}

		assignee := "Unassigned"
		if task.AssigneeID != "" {
			if user, err := uc.repo.User().GetByID(ctx, task.AssigneeID); err == nil {
				assignee = user.Name
			}
		}

		fmt.Fprintf(&b, "%s *%s* - assigned to %s", marker, task.Title, assignee)
		if task.DueDate != nil {
			fmt.Fprintf(&b, " (Due: %s)", task.DueDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// tokenFor resolves the workspace token, degrading to an empty token (and the
// service-level default) when resolution fails.
func (uc *InteractionUseCase) tokenFor(ctx context.Context, teamID types.TeamID) string {
	token, err := uc.installation.ResolveToken(ctx, teamID)
	if err != nil {
		logging.From(ctx).Warn("failed to resolve bot token", "team_id", teamID, "error", err)
		return ""
	}
	return token
}

// parseDueDate normalizes a date-only picker value to noon UTC, keeping the
// calendar date stable across dashboard timezones.
func parseDueDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid due date", goerr.V("value", value))
	}
	due := time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.UTC)
	return &due, nil
}
