package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"kolabo/pkg/domain"
	"kolabo/pkg/requestcontext"
)

// ActorValidator validates a bearer token and returns the calling actor.
// The core never authenticates; it trusts the identity this returns and only
// applies domain-level membership and ownership checks.
type ActorValidator interface {
	ValidateToken(tokenString string) (domain.Actor, error)
}

// RequireActor rejects requests without a valid bearer token and injects the
// authenticated actor into the request context.
func RequireActor(validator ActorValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w)
				return
			}

			actor, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
