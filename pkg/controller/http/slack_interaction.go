package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/taskdeck/taskdeck/pkg/usecase"
	"github.com/taskdeck/taskdeck/pkg/utils/async"
	"github.com/taskdeck/taskdeck/pkg/utils/errutil"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
	"github.com/taskdeck/taskdeck/pkg/utils/safe"
)

// SlackInteractionHandler handles slash commands and interactive component
// payloads. Both arrive form-encoded on the same endpoint: interactive
// payloads carry a "payload" field, slash commands do not.
type SlackInteractionHandler struct {
	interactionUC *usecase.InteractionUseCase
}

func NewSlackInteractionHandler(interactionUC *usecase.InteractionUseCase) *SlackInteractionHandler {
	return &SlackInteractionHandler{
		interactionUC: interactionUC,
	}
}

func (h *SlackInteractionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	payload := r.FormValue("payload")
	if payload == "" {
		h.serveSlashCommand(w, r)
		return
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		// A non-200 here makes Slack retry and surface a raw error to the
		// user; an unparseable payload gets a benign ack instead
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to parse interaction payload"), "invalid interaction payload")
		ackOK(ctx, w)
		return
	}

	switch callback.Type {
	case slack.InteractionTypeViewSubmission:
		// view_submission must be answered synchronously: the response body
		// tells Slack whether to close the modal or show field errors
		resp, err := h.interactionUC.HandleViewSubmission(ctx, &callback)
		if err != nil {
			_ = errutil.Handle(ctx, err, "failed to handle view submission")
			resp = slack.NewClearViewSubmissionResponse()
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			logging.From(ctx).Error("failed to write view submission response", "error", err)
		}

	case slack.InteractionTypeMessageAction:
		w.WriteHeader(http.StatusOK)
		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.interactionUC.HandleMessageAction(ctx, &callback)
		})

	case slack.InteractionTypeShortcut:
		w.WriteHeader(http.StatusOK)
		async.Dispatch(ctx, func(ctx context.Context) error {
			return h.interactionUC.HandleShortcut(ctx, &callback)
		})

	default:
		// Unsupported interaction type, ack and ignore
		logging.From(ctx).Debug("ignoring interaction", "type", callback.Type)
		ackOK(ctx, w)
	}
}

func ackOK(ctx context.Context, w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(ctx, w, []byte(`{"ok":true}`))
}

// serveSlashCommand acknowledges a slash command with an empty 200 and
// performs the work asynchronously. Handler failures are logged but never
// surfaced to Slack; a non-200 would print a raw error in the channel.
func (h *SlackInteractionHandler) serveSlashCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cmd, err := slack.SlashCommandParse(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slash command"), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	async.Dispatch(ctx, func(ctx context.Context) error {
		return h.interactionUC.HandleSlashCommand(ctx, cmd)
	})
}
