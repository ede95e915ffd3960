package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/vici/internal/middleware"
)

func TestSetAndGetUserID(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if got := middleware.GetUserID(req); got != "" {
		t.Errorf("expected empty, got %q", got)
	}

	req = req.WithContext(middleware.SetUserID(req.Context(), "user-abc"))
	if got := middleware.GetUserID(req); got != "user-abc" {
		t.Errorf("expected user-abc, got %q", got)
	}
	if got := middleware.GetRequestID(req.Context()); got != "" {
		t.Errorf("request id should be independent of user id, got %q", got)
	}
}
