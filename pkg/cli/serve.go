package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/taskdeck/taskdeck/pkg/cli/config"
	httpctrl "github.com/taskdeck/taskdeck/pkg/controller/http"
	"github.com/taskdeck/taskdeck/pkg/usecase"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var repoCfg config.Repository
	var slackCfg config.Slack
	var workspacesCfg config.Workspaces

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TASKDECK_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Public base URL of the application (e.g., https://your-domain.com)",
			Sources:     cli.EnvVars("TASKDECK_BASE_URL"),
			Destination: &baseURL,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)
	flags = append(flags, workspacesCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			slackSvc, err := slackCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure slack service")
			}
			logging.Default().Info("Slack service configured", "slack", slackCfg)

			uc := usecase.New(repo,
				usecase.WithSlackService(slackSvc),
				usecase.WithDefaultBotToken(slackCfg.BotToken()),
			)

			installs, err := workspacesCfg.Load()
			if err != nil {
				return goerr.Wrap(err, "failed to load workspace file")
			}
			if len(installs) > 0 {
				if err := uc.Installation.Seed(ctx, installs); err != nil {
					return goerr.Wrap(err, "failed to seed workspaces")
				}
				logging.Default().Info("Seeded workspace installations", "count", len(installs))
			}

			httpOpts := []httpctrl.Options{}

			if slackCfg.IsWebhookConfigured() {
				eventHandler := httpctrl.NewSlackEventHandler(uc.Event)
				interactionHandler := httpctrl.NewSlackInteractionHandler(uc.Interaction)
				httpOpts = append(httpOpts, httpctrl.WithSlackWebhook(eventHandler, interactionHandler, slackCfg.SigningSecret()))
				logging.Default().Info("Slack webhook handlers enabled")
			}

			if slackCfg.IsOAuthConfigured() {
				httpOpts = append(httpOpts, httpctrl.WithOAuth(uc.Installation, baseURL))
				logging.Default().Info("Slack OAuth callback enabled")
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				logging.Default().Info("Server stopped")
			}

			return nil
		},
	}
}
