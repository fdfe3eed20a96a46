package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/zahek/todo-platform/pkg/logger"
)

type contextKeyType string

const claimsKey contextKeyType = "auth_claims"

// Claims is the verified identity the auth middleware attaches to a request.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// TokenValidator turns the raw Authorization header value (possibly empty)
// into verified claims.
type TokenValidator func(ctx context.Context, authorizationHeader string) (*Claims, error)

// AuthErrorWriter renders a validation failure.
type AuthErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Auth validates the Authorization header on every request and stores the
// resulting claims in the context. The request logger, if any, is
// re-enriched with the user ID. Without onError a failure is a bare 401.
func Auth(validate TokenValidator, onError AuthErrorWriter) func(http.Handler) http.Handler {
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, _ error) {
			writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired credentials")
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := validate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				onError(w, r, err)
				return
			}

			ctx := WithClaims(r.Context(), claims)
			ctx = logger.WithUserID(ctx, claims.UserID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With(slog.String("user_id", claims.UserID)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithClaims returns a copy of ctx carrying claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims stored by Auth.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok && c != nil
}

// UserIDFromContext returns the authenticated user ID, or "".
func UserIDFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok {
		return c.UserID
	}
	return ""
}
