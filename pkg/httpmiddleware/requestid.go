package httpmiddleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDFromContext returns the request id assigned by RequestID, or an
// empty string when the middleware did not run.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// RequestID assigns each request an id, echoes it on the X-Request-ID
// response header, and stores it in the context for InjectLogger. The UI
// shell may supply its own id to correlate its logs with the facade's;
// values longer than 64 bytes or containing non-printable characters are
// replaced with a fresh UUID.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shellRequestID(r)
			if id == "" {
				id = uuid.NewString()
			}

			w.Header().Set("X-Request-ID", id)
			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), requestIDKey{}, id)))
		})
	}
}

// shellRequestID returns the shell-provided request id, or an empty string
// when the header is absent or unusable.
func shellRequestID(r *http.Request) string {
	id := r.Header.Get("X-Request-ID")
	if id == "" || len(id) > 64 {
		return ""
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= 0x20 || id[i] > 0x7E {
			return ""
		}
	}
	return id
}
