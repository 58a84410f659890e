package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/taskdeck/taskdeck/pkg/usecase"
	"github.com/taskdeck/taskdeck/pkg/utils/errutil"
	"github.com/taskdeck/taskdeck/pkg/utils/logging"
)

// oauthCallbackHandler completes the Slack OAuth flow: it exchanges the
// temporary code for a bot token, stores the installation, and redirects the
// installer to the success page. Failures are reported as JSON carrying the
// platform's own error code.
func oauthCallbackHandler(installUC *usecase.InstallationUseCase, baseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if errParam := r.URL.Query().Get("error"); errParam != "" {
			_ = errutil.Handle(ctx, goerr.New("oauth flow denied",
				goerr.V("error", errParam)), "oauth flow denied")
			writeOAuthError(ctx, w, errParam, http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			logging.From(ctx).Warn("oauth callback without code parameter")
			writeOAuthError(ctx, w, "No code provided", http.StatusBadRequest)
			return
		}

		install, err := installUC.HandleOAuthCallback(ctx, code)
		if err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "oauth callback failed"), "oauth callback failed")
			writeOAuthError(ctx, w, platformErrorCode(err), http.StatusInternalServerError)
			return
		}

		logging.From(ctx).Info("oauth callback completed", "team_id", install.TeamID)

		http.Redirect(w, r, baseURL+"/success", http.StatusFound)
	}
}

// platformErrorCode extracts the Slack error string carried in the wrap chain
// (e.g. invalid_code) so the installer sees the platform's code rather than
// the internal wrap messages.
func platformErrorCode(err error) string {
	if v, ok := goerr.Values(err)["slack_error"].(string); ok && v != "" {
		return v
	}
	return err.Error()
}

func writeOAuthError(ctx context.Context, w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.From(ctx).Error("failed to write oauth error response", "error", err)
	}
}
