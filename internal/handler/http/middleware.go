package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/zahek/todo-platform/internal/domain"
	"github.com/zahek/todo-platform/internal/service"
	"github.com/zahek/todo-platform/pkg/httputil"
	"github.com/zahek/todo-platform/pkg/middleware"
)

// Authenticate gates a route on a valid access token. Any session failure
// is a 401 with the generic credentials message.
func Authenticate(sessions *service.SessionService) func(http.Handler) http.Handler {
	validate := func(_ context.Context, header string) (*middleware.Claims, error) {
		principal, err := sessions.Authenticate(header)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{UserID: principal.UserID, Email: principal.Email}, nil
	}

	return middleware.Auth(validate, func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, err, nil)
	})
}

// PrincipalFromContext returns the principal attached by Authenticate.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return nil, false
	}
	return &domain.Principal{UserID: claims.UserID, Email: claims.Email}, true
}

// ContentTypeJSON rejects body-carrying requests whose Content-Type is not
// application/json. Mount it only on routes that decode a JSON body.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    "UNSUPPORTED_MEDIA_TYPE",
						Message: "Content-Type must be application/json",
					},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
