package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaekwang-park/vici/internal/middleware"
)

func TestLogging(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		handler   http.HandlerFunc
		wantLevel string
		wantParts []string
	}{
		{
			name: "implicit 200",
			path: "/health",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			wantLevel: "level=INFO",
			wantParts: []string{"method=GET", "path=/health", "status=200"},
		},
		{
			name: "not found",
			path: "/api/v1/tasks/missing",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			wantLevel: "level=INFO",
			wantParts: []string{"status=404"},
		},
		{
			name: "server error logged as error",
			path: "/api/v1/tasks",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantLevel: "level=ERROR",
			wantParts: []string{"status=500"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger()
			h := middleware.RequestID(middleware.Logging(logger)(tt.handler))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			out := buf.String()
			for _, want := range append(tt.wantParts, tt.wantLevel, "request_id=") {
				if !strings.Contains(out, want) {
					t.Errorf("expected log to contain %q, got: %s", want, out)
				}
			}
		})
	}
}
