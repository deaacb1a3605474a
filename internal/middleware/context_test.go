package middleware_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/todoapp/todo-api/internal/middleware"
)

func TestSetAndGetRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if got := middleware.GetRequestID(req); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	ctx := middleware.SetRequestID(req.Context(), "req-abc")
	req = req.WithContext(ctx)

	if got := middleware.GetRequestID(req); got != "req-abc" {
		t.Errorf("expected req-abc, got %q", got)
	}
	if got := middleware.RequestIDFromContext(ctx); got != "req-abc" {
		t.Errorf("expected req-abc from context, got %q", got)
	}
	if got := middleware.RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty for bare context, got %q", got)
	}
}
