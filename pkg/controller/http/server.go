package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/taskdeck/taskdeck/pkg/usecase"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
	"github.com/taskdeck/taskdeck/pkg/utils/safe"
)

type Server struct {
	router             *chi.Mux
	eventHandler       *SlackEventHandler
	interactionHandler *SlackInteractionHandler
	installationUC     *usecase.InstallationUseCase
	slackSigningSecret string
	baseURL            string
}

type Options func(*Server)

// WithSlackWebhook registers the event and interaction webhook handlers.
// Signing secret verification applies to every /hooks/slack/* route.
func WithSlackWebhook(eventHandler *SlackEventHandler, interactionHandler *SlackInteractionHandler, signingSecret string) Options {
	return func(s *Server) {
		s.eventHandler = eventHandler
		s.interactionHandler = interactionHandler
		s.slackSigningSecret = signingSecret
	}
}

// WithOAuth registers the OAuth callback endpoint. baseURL is the public URL
// the installer is redirected to after a successful install.
func WithOAuth(installUC *usecase.InstallationUseCase, baseURL string) Options {
	return func(s *Server) {
		s.installationUC = installUC
		s.baseURL = baseURL
	}
}

func New(opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	if s.eventHandler != nil {
		r.Route("/hooks/slack", func(r chi.Router) {
			r.Use(SlackSignatureMiddleware(s.slackSigningSecret))

			r.Post("/event", s.eventHandler.ServeHTTP)
			r.Post("/interaction", s.interactionHandler.ServeHTTP)
		})
	}

	if s.installationUC != nil {
		r.Get("/api/slack/oauth/callback", oauthCallbackHandler(s.installationUC, s.baseURL))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, []byte(`{"status":"ok"}`))
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
