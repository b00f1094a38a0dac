package testutil

import (
	"net/http"
	"time"

	"kolabo/pkg/domain"
	"kolabo/pkg/requestcontext"
)

// WithActor attaches an authenticated actor to the request context,
// simulating what the auth middleware does for a valid bearer token.
func WithActor(req *http.Request, actor domain.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithRequestID attaches a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithTime pins the request-scoped clock, keeping timestamps deterministic.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
