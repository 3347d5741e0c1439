package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"

	maxRequestIDLen = 64
)

// RequestID propagates a caller-supplied X-Request-ID when it is a sane
// token, otherwise mints a fresh uuid, and echoes the id on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := sanitizeRequestID(r.Header.Get("X-Request-ID"))
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// sanitizeRequestID rejects ids that are oversized or carry anything
// outside printable ASCII, since the id is reflected into response headers
// and log lines.
func sanitizeRequestID(rid string) string {
	if len(rid) > maxRequestIDLen {
		return ""
	}
	for _, c := range rid {
		if c < '!' || c > '~' {
			return ""
		}
	}
	return rid
}
