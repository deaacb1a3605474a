package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const requestIDKey contextKey = "request_id"

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID returns the ID assigned by RequestID, or "" outside the middleware chain.
func GetRequestID(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

func RequestIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}
