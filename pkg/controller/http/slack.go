package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
	"github.com/taskdeck/taskdeck/pkg/usecase"
	"github.com/taskdeck/taskdeck/pkg/utils/async"
	"github.com/taskdeck/taskdeck/pkg/utils/errutil"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
)

// SlackEventHandler handles Slack Events API webhook requests
type SlackEventHandler struct {
	eventUC *usecase.EventUseCase
}

func NewSlackEventHandler(eventUC *usecase.EventUseCase) *SlackEventHandler {
	return &SlackEventHandler{
		eventUC: eventUC,
	}
}

// ServeHTTP handles Slack webhook requests. Callback events are acknowledged
// immediately and processed asynchronously to satisfy Slack's 3-second
// timeout.
func (h *SlackEventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	eventsAPIEvent, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch eventsAPIEvent.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to unmarshal challenge"), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(challenge.Challenge)); err != nil {
			logging.From(ctx).Error("failed to write challenge response", "error", err)
		}
		return

	case slackevents.CallbackEvent:
		// Ack before processing; Slack retries unacknowledged deliveries
		w.WriteHeader(http.StatusOK)

		var envelope slackevents.EventsAPICallbackEvent
		if err := json.Unmarshal(body, &envelope); err != nil {
			logging.From(ctx).Warn("failed to decode event envelope", "error", err)
		}
		if h.eventUC.Seen(envelope.EventID) {
			logging.From(ctx).Debug("skipping duplicate event delivery",
				"event_id", envelope.EventID,
			)
			return
		}

		async.Dispatch(ctx, func(ctx context.Context) error {
			logging.From(ctx).Info("processing slack callback event",
				"event_id", envelope.EventID,
				"team_id", eventsAPIEvent.TeamID,
			)

			if err := h.eventUC.HandleCallback(ctx, &eventsAPIEvent); err != nil {
				return goerr.Wrap(err, "failed to handle slack event")
			}
			return nil
		})

	default:
		logging.From(ctx).Warn("unknown slack event type", "type", eventsAPIEvent.Type)
		ackOK(ctx, w)
	}
}
