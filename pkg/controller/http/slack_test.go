package http_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/taskdeck/taskdeck/pkg/controller/http"
	"github.com/taskdeck/taskdeck/pkg/domain/interfaces"
	"github.com/taskdeck/taskdeck/pkg/repository/memory"
	slacksvc "github.com/taskdeck/taskdeck/pkg/service/slack"
	"github.com/taskdeck/taskdeck/pkg/usecase"
)

func newEventTestEnv(t *testing.T) (interfaces.Repository, *slacksvc.Mock, *httpctrl.SlackEventHandler) {
	t.Helper()

	repo := memory.New()
	svc := &slacksvc.Mock{}
	uc := usecase.New(repo, usecase.WithSlackService(svc), usecase.WithDefaultBotToken("xoxb-test"))
	return repo, svc, httpctrl.NewSlackEventHandler(uc.Event)
}

// waitFor polls cond until it returns true or the deadline passes
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSlackEventHandler(t *testing.T) {
	t.Run("url_verification echoes challenge as plain text", func(t *testing.T) {
		_, _, handler := newEventTestEnv(t)

		body := []byte(`{"type":"url_verification","challenge":"my-challenge-token"}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		gt.Value(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("text/plain")
		gt.Value(t, rec.Body.String()).Equal("my-challenge-token")
	})

	t.Run("app_mention creates a task", func(t *testing.T) {
		repo, _, handler := newEventTestEnv(t)

		body := []byte(`{
			"type": "event_callback",
			"team_id": "T0001",
			"event_id": "Ev0001",
			"event": {
				"type": "app_mention",
				"user": "U1234",
				"text": "<@UBOT123> review the deploy checklist",
				"channel": "C0001",
				"ts": "1725000000.000100"
			}
		}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		ctx := context.Background()
		waitFor(t, func() bool {
			tasks, err := repo.Task().ListRecent(ctx, "T0001", 10)
			return err == nil && len(tasks) == 1
		})

		tasks, err := repo.Task().ListRecent(ctx, "T0001", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
		gt.Value(t, tasks[0].Title).Equal("review the deploy checklist")
		gt.Value(t, tasks[0].SlackChannelID).Equal("C0001")
		gt.Value(t, tasks[0].SlackPermalink).Equal("https://slack.com/archives/C0001/p1725000000000100")

		creator, err := repo.User().GetBySlackID(ctx, "U1234")
		gt.NoError(t, err).Required()
		gt.Value(t, tasks[0].CreatorID).Equal(creator.ID)
		gt.Value(t, tasks[0].AssigneeID).Equal(creator.ID)
	})

	t.Run("mention with only the bot tag falls back to default title", func(t *testing.T) {
		repo, _, handler := newEventTestEnv(t)

		body := []byte(`{
			"type": "event_callback",
			"team_id": "T0002",
			"event_id": "Ev0002",
			"event": {
				"type": "app_mention",
				"user": "U1234",
				"text": "<@UBOT123>",
				"channel": "C0001",
				"ts": "1725000000.000200"
			}
		}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		ctx := context.Background()
		waitFor(t, func() bool {
			tasks, err := repo.Task().ListRecent(ctx, "T0002", 10)
			return err == nil && len(tasks) == 1
		})

		tasks, err := repo.Task().ListRecent(ctx, "T0002", 10)
		gt.NoError(t, err).Required()
		gt.Value(t, tasks[0].Title).Equal("Slack task")
	})

	t.Run("duplicate event deliveries create one task", func(t *testing.T) {
		repo, _, handler := newEventTestEnv(t)

		body := `{
			"type": "event_callback",
			"team_id": "T0003",
			"event_id": "Ev0003",
			"event": {
				"type": "app_mention",
				"user": "U1234",
				"text": "<@UBOT123> only once",
				"channel": "C0001",
				"ts": "1725000000.000300"
			}
		}`

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader([]byte(body)))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			gt.Value(t, rec.Code).Equal(http.StatusOK)
		}

		ctx := context.Background()
		waitFor(t, func() bool {
			tasks, err := repo.Task().ListRecent(ctx, "T0003", 10)
			return err == nil && len(tasks) >= 1
		})
		// Give retries a chance to land before counting
		time.Sleep(100 * time.Millisecond)

		tasks, err := repo.Task().ListRecent(ctx, "T0003", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)
	})

	t.Run("unknown inner events are acknowledged and ignored", func(t *testing.T) {
		repo, _, handler := newEventTestEnv(t)

		body := []byte(`{
			"type": "event_callback",
			"team_id": "T0004",
			"event_id": "Ev0004",
			"event": {
				"type": "reaction_added",
				"user": "U1234"
			}
		}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)

		time.Sleep(50 * time.Millisecond)
		tasks, err := repo.Task().ListRecent(context.Background(), "T0004", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(0)
	})

	t.Run("malformed body is rejected with 400", func(t *testing.T) {
		_, _, handler := newEventTestEnv(t)

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader([]byte("not json")))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestServerRouting(t *testing.T) {
	signingSecret := "test-secret"

	repo := memory.New()
	svc := &slacksvc.Mock{}
	uc := usecase.New(repo, usecase.WithSlackService(svc), usecase.WithDefaultBotToken("xoxb-test"))

	server := httpctrl.New(
		httpctrl.WithSlackWebhook(
			httpctrl.NewSlackEventHandler(uc.Event),
			httpctrl.NewSlackInteractionHandler(uc.Interaction),
			signingSecret,
		),
	)

	t.Run("health endpoint responds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("event endpoint rejects unsigned requests", func(t *testing.T) {
		body := []byte(`{"type":"event_callback","team_id":"T1","event":{"type":"app_mention"}}`)
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("event endpoint accepts signed requests", func(t *testing.T) {
		body := []byte(`{"type":"event_callback","team_id":"T1","event_id":"EvR1","event":{"type":"reaction_added"}}`)
		timestamp := fmt.Sprintf("%d", time.Now().Unix())
		signature := computeSlackSignature(signingSecret, timestamp, string(body))

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", bytes.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", timestamp)
		req.Header.Set("X-Slack-Signature", signature)
		rec := httptest.NewRecorder()

		server.ServeHTTP(rec, req)
		gt.Value(t, rec.Code).Equal(http.StatusOK)
	})
}
