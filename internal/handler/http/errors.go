package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/zahek/todo-platform/internal/auth"
	apperrors "github.com/zahek/todo-platform/pkg/errors"
	"github.com/zahek/todo-platform/pkg/httputil"
	"github.com/zahek/todo-platform/pkg/logger"
)

// msgInvalidCredentials is the only message a client sees for any session
// failure, so expired and forged tokens are indistinguishable.
const msgInvalidCredentials = "invalid or expired credentials"

// writeError renders err. Session failures collapse to a single 401 and
// session internal failures become a logged 500. Everything else goes
// through the AppError mapping.
func writeError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	switch {
	case auth.IsClientError(err):
		logger.FromContext(r.Context()).DebugContext(r.Context(), "session rejected",
			slog.String("kind", string(auth.KindOf(err))),
		)
		err = apperrors.Unauthorized(msgInvalidCredentials, err)
	case errors.Is(err, auth.ErrInternalFailure):
		err = apperrors.Internal(err)
	}
	httputil.WriteError(w, r, err, fallback)
}
