package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/tasks", "/api/v1/tasks"},
		{"/api/v1/tasks/order", "/api/v1/tasks/order"},
		{"/api/v1/tasks/3f2a", "/api/v1/tasks/:id"},
		{"/api/v1/notifications/n1/read", "/api/v1/notifications/:id/read"},
		{"/api/v1/notifications", "/api/v1/notifications"},
		{"/api/v1/communications/gmail/connect", "/api/v1/communications/:service/connect"},
		{"/api/v1/communications", "/api/v1/communications"},
		{"/health", "/health"},
		{"/favicon.ico", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := normalizeEndpoint(tt.path); got != tt.want {
				t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestMetrics_RecordsStatus(t *testing.T) {
	type record struct {
		method, endpoint, status string
	}
	var got []record
	original := recordHTTPRequest
	recordHTTPRequest = func(method, endpoint, status string, duration time.Duration) {
		got = append(got, record{method, endpoint, status})
	}
	defer func() { recordHTTPRequest = original }()

	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/abc", nil))

	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	want := record{http.MethodDelete, "/api/v1/tasks/:id", "404"}
	if got[0] != want {
		t.Errorf("got %+v, want %+v", got[0], want)
	}
}
