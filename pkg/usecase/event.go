package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
	"github.com/taskdeck/taskdeck/pkg/domain/model"
	"github.com/taskdeck/taskdeck/pkg/domain/types"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
)

const fallbackTaskTitle = "Slack task"

// Slack retries event deliveries that are not acknowledged within 3 seconds,
// so the same event_id can arrive more than once.
const (
	dedupeCacheSize = 1024
	dedupeCacheTTL  = 10 * time.Minute
)

var mentionPattern = regexp.MustCompile(`<@[A-Z0-9]+>`)

// EventUseCase handles Slack Events API callbacks
type EventUseCase struct {
	installation *InstallationUseCase
	identity     *IdentityResolver
	tasks        *TaskUseCase
	seen         *expirable.LRU[string, struct{}]
}

func NewEventUseCase(installation *InstallationUseCase, identity *IdentityResolver, tasks *TaskUseCase) *EventUseCase {
	return &EventUseCase{
		installation: installation,
		identity:     identity,
		tasks:        tasks,
		seen:         expirable.NewLRU[string, struct{}](dedupeCacheSize, nil, dedupeCacheTTL),
	}
}

// Seen records an event ID and reports whether it was already handled
func (uc *EventUseCase) Seen(eventID string) bool {
	if eventID == "" {
		return false
	}
	if _, ok := uc.seen.Get(eventID); ok {
		return true
	}
	uc.seen.Add(eventID, struct{}{})
	return false
}

// HandleCallback dispatches an inner event from an event_callback envelope.
// Unhandled event types are ignored without error.
func (uc *EventUseCase) HandleCallback(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	teamID := types.TeamID(event.TeamID)

	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		_, err := uc.HandleMention(ctx, inner, teamID)
		return err

	default:
		logging.From(ctx).Debug("ignoring slack event",
			"event_type", event.InnerEvent.Type,
		)
		return nil
	}
}

// HandleMention creates a task from an app_mention event. The mention text
// (minus the bot mention itself) becomes the title, and the message location
// is preserved as a permalink back to the conversation.
func (uc *EventUseCase) HandleMention(ctx context.Context, mention *slackevents.AppMentionEvent, teamID types.TeamID) (*model.Task, error) {
	if mention.User == "" {
		return nil, goerr.New("app_mention without user", goerr.V("channel", mention.Channel))
	}

	title := stripMentions(mention.Text)
	if title == "" {
		title = fallbackTaskTitle
	}

	token, err := uc.installation.ResolveToken(ctx, teamID)
	if err != nil {
		logging.From(ctx).Warn("no bot token for workspace, profile enrichment disabled",
			"team_id", teamID,
			"error", err,
		)
		token = ""
	}

	creator, err := uc.identity.Resolve(ctx, types.SlackUserID(mention.User), teamID, token)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve mention author")
	}

	task := model.NewTask(title)
	task.CreatorID = creator.ID
	task.AssigneeID = creator.ID
	task.TeamID = teamID
	task.SlackChannelID = mention.Channel
	task.SlackMessageTS = mention.TimeStamp
	if teamID != "" {
		task.SlackPermalink = messagePermalink(mention.Channel, mention.TimeStamp)
	}

	if err := uc.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("task created from mention",
		"task_id", task.ID,
		"team_id", teamID,
		"channel", mention.Channel,
	)

	return task, nil
}

func stripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// messagePermalink synthesizes an archive link from channel and timestamp,
// avoiding a chat.getPermalink round trip on the hot event path.
func messagePermalink(channelID, messageTS string) string {
	return fmt.Sprintf("https://slack.com/archives/%s/p%s",
		channelID, strings.Replace(messageTS, ".", "", 1))
}
