package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/vici/internal/metrics"
)

var recordHTTPRequest = metrics.RecordHTTPRequest

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		recordHTTPRequest(r.Method, normalizeEndpoint(r.URL.Path), strconv.Itoa(rec.statusCode), time.Since(start))
	})
}

// normalizeEndpoint collapses IDs in the path to keep label cardinality bounded.
func normalizeEndpoint(path string) string {
	switch {
	case path == "/api/v1/tasks/order":
		return path
	case strings.HasPrefix(path, "/api/v1/tasks/"):
		return "/api/v1/tasks/:id"
	case strings.HasPrefix(path, "/api/v1/notifications/"):
		return "/api/v1/notifications/:id/read"
	case strings.HasPrefix(path, "/api/v1/communications/"):
		return "/api/v1/communications/:service/connect"
	case strings.HasPrefix(path, "/api/v1/auth/"), strings.HasPrefix(path, "/api/v1/"), path == "/health", path == "/metrics":
		return path
	default:
		return "other"
	}
}
