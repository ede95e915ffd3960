package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/http/handler"
	"github.com/jaekwang-park/vici/internal/service"
)

// Services groups what the router dispatches to. Auth and Events may be nil.
type Services struct {
	Tasks          *service.TaskService
	Stats          *service.StatsService
	Insights       *service.InsightService
	Notifications  *service.NotificationService
	Communications *service.CommunicationService
	Auth           *service.AuthService
	Events         events.Subscriber
	Heartbeat      time.Duration
	HealthChecks   []handler.Check
}

func NewRouter(svcs Services, logger *slog.Logger) http.Handler {
	mux, _ := newRouter(svcs, logger)
	return mux
}

func newRouter(svcs Services, logger *slog.Logger) (*http.ServeMux, *handler.EventsHandler) {
	mux := http.NewServeMux()

	// Health check - intentionally outside /api/v1 for ALB health check compatibility
	mux.Handle("/health", handler.NewHealthHandler(svcs.HealthChecks...))
	mux.Handle("/metrics", promhttp.Handler())

	tasks := handler.NewTaskHandler(svcs.Tasks)
	mux.Handle("/api/v1/tasks", tasks)
	mux.Handle("/api/v1/tasks/", tasks)

	dashboard := handler.NewDashboardHandler(svcs.Stats, svcs.Insights, svcs.Communications)
	mux.Handle("/api/v1/stats", dashboard)
	mux.Handle("/api/v1/snapshot", dashboard)
	mux.Handle("/api/v1/insights", dashboard)
	mux.Handle("/api/v1/communications", dashboard)
	mux.Handle("/api/v1/communications/", dashboard)

	notifications := handler.NewNotificationHandler(svcs.Notifications)
	mux.Handle("/api/v1/notifications", notifications)
	mux.Handle("/api/v1/notifications/", notifications)
	mux.Handle("/api/v1/accountability", notifications)

	eventsHandler := handler.NewEventsHandler(svcs.Events, svcs.Heartbeat, logger)
	mux.Handle("/api/v1/events", eventsHandler)

	if svcs.Auth != nil {
		mux.Handle("/api/v1/auth/", handler.NewAuthHandler(svcs.Auth))
	}

	return mux, eventsHandler
}
