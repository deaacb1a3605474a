package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen caps client-supplied IDs before they reach the logs.
const maxRequestIDLen = 128

// RequestID tags every request with an ID, reusing a sane X-Request-ID from the client.
// The ID is echoed in the response header and stored in the request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(SetRequestID(r.Context(), id)))
		})
	}
}
