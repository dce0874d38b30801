package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"planner-service/internal/domain/repository"
	"planner-service/pkg/logger"
)

type contextKey string

const (
	requestIDKey contextKey = "requestId"
	sessionIDKey contextKey = "sessionId"
)

// RequestID accepts the caller's X-Request-ID or generates one, stores
// it in the request context and echoes it as a response header. Every
// structured log line and response body carries it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, rid)))
	})
}

// SessionAuth requires a known X-Session-ID header. The session id is
// never part of the URL or body; it always travels out-of-band.
func SessionAuth(sessions repository.SessionRepository, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := r.Header.Get("X-Session-ID")
			if sessionID == "" {
				httpError(w, r, http.StatusUnauthorized, codeUnknownSess, "missing X-Session-ID header")
				return
			}
			ok, err := sessions.Exists(r.Context(), sessionID)
			if err != nil {
				log.Error("Session lookup failed", "requestId", requestIDFrom(r.Context()), "error", err)
				httpError(w, r, http.StatusInternalServerError, codeInternal, "session lookup failed")
				return
			}
			if !ok {
				httpError(w, r, http.StatusUnauthorized, codeUnknownSess, "unknown session")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionIDKey, sessionID)))
		})
	}
}

func requestIDFrom(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

func sessionIDFrom(ctx context.Context) string {
	if sid, ok := ctx.Value(sessionIDKey).(string); ok {
		return sid
	}
	return ""
}
