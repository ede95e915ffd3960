package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jaekwang-park/vici/internal/cognito"
	vicihttp "github.com/jaekwang-park/vici/internal/http"
	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

// stubTaskRepo for router tests
type stubTaskRepo struct{}

func (s *stubTaskRepo) Create(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	return task, nil
}
func (s *stubTaskRepo) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	return model.Task{}, fmt.Errorf("not found")
}
func (s *stubTaskRepo) Update(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	return task, nil
}
func (s *stubTaskRepo) Delete(ctx context.Context, userID, taskID string) error {
	return nil
}
func (s *stubTaskRepo) List(ctx context.Context, userID string) ([]model.Task, error) {
	return []model.Task{}, nil
}
func (s *stubTaskRepo) Reorder(ctx context.Context, userID string, ids []string) error {
	return nil
}

type stubNotificationRepo struct{}

func (s *stubNotificationRepo) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	return n, nil
}
func (s *stubNotificationRepo) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return []model.Notification{}, nil
}
func (s *stubNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	return nil
}

type stubGenerator struct{}

func (stubGenerator) Insights(ctx context.Context, tasks []model.Task) []model.Insight {
	return nil
}
func (stubGenerator) AccountabilityMessage(ctx context.Context, tasks []model.Task) string {
	return "keep going"
}

type stubSource struct{}

func (stubSource) Status(ctx context.Context) []model.CommunicationActivity {
	return []model.CommunicationActivity{}
}
func (stubSource) Connect(service string) (string, error) {
	return "connect " + service, nil
}

// stubCognitoClient for router tests; the auth flows are not exercised here.
type stubCognitoClient struct{}

func (s *stubCognitoClient) Login(ctx context.Context, input cognito.LoginInput) (cognito.AuthOutput, error) {
	return cognito.AuthOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) RefreshTokens(ctx context.Context, input cognito.RefreshInput) (cognito.AuthOutput, error) {
	return cognito.AuthOutput{}, fmt.Errorf("not implemented")
}
func (s *stubCognitoClient) GlobalSignOut(ctx context.Context, accessToken string) error {
	return fmt.Errorf("not implemented")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServices(withAuth bool) vicihttp.Services {
	tasks := &stubTaskRepo{}
	svcs := vicihttp.Services{
		Tasks:          service.NewTaskService(tasks, nil, nil),
		Stats:          service.NewStatsService(tasks),
		Insights:       service.NewInsightService(tasks, stubGenerator{}),
		Notifications:  service.NewNotificationService(&stubNotificationRepo{}, tasks, stubGenerator{}, nil, nil, nil),
		Communications: service.NewCommunicationService(stubSource{}, nil, nil),
	}
	if withAuth {
		svcs.Auth = service.NewAuthService(&stubCognitoClient{}, nil)
	}
	return svcs
}

func TestRouter_HealthEndpoint(t *testing.T) {
	router := vicihttp.NewRouter(newTestServices(false), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", result["status"])
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := vicihttp.NewRouter(newTestServices(false), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected Go runtime metrics in scrape output")
	}
}

func TestRouter_APIEndpointsRegistered(t *testing.T) {
	router := vicihttp.NewRouter(newTestServices(false), discardLogger())

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/api/v1/tasks", http.StatusOK},
		{http.MethodGet, "/api/v1/stats", http.StatusOK},
		{http.MethodGet, "/api/v1/snapshot", http.StatusOK},
		{http.MethodGet, "/api/v1/insights", http.StatusOK},
		{http.MethodGet, "/api/v1/communications", http.StatusOK},
		{http.MethodGet, "/api/v1/notifications", http.StatusOK},
		{http.MethodPatch, "/api/v1/notifications/n-1/read", http.StatusNoContent},
		{http.MethodPost, "/api/v1/accountability", http.StatusOK},
		{http.MethodPost, "/api/v1/communications/gmail/connect", http.StatusOK},
		{http.MethodPut, "/api/v1/tasks/order", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			// The router does not enforce auth; the middleware does.
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-1"))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRouter_EventsWithoutBus(t *testing.T) {
	router := vicihttp.NewRouter(newTestServices(false), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestRouter_AuthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		withAuth   bool
		wantStatus int
	}{
		{"registered when configured", true, http.StatusBadRequest},
		{"absent without cognito", false, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := vicihttp.NewRouter(newTestServices(tt.withAuth), discardLogger())

			// Login with empty body → JSON error when the route exists
			req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := vicihttp.NewRouter(newTestServices(false), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}
