package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/middleware"
)

const defaultHeartbeat = 25 * time.Second

// EventsHandler relays a user's push events as a text/event-stream.
type EventsHandler struct {
	sub       events.Subscriber
	heartbeat time.Duration
	logger    *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
}

// NewEventsHandler creates an EventsHandler. A nil subscriber makes the
// stream unavailable.
func NewEventsHandler(sub events.Subscriber, heartbeat time.Duration, logger *slog.Logger) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &EventsHandler{sub: sub, heartbeat: heartbeat, logger: logger, done: make(chan struct{})}
}

// Shutdown ends every open stream. The server calls it when it begins
// shutting down so streams do not hold the shutdown open.
func (h *EventsHandler) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if h.sub == nil {
		WriteError(w, http.StatusServiceUnavailable, "EVENTS_UNAVAILABLE", "event stream is not configured")
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(r)

	stream, closeFn, err := h.sub.Subscribe(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "event subscription failed", "user_id", userID, "error", err)
		WriteError(w, http.StatusServiceUnavailable, "EVENTS_UNAVAILABLE", "event stream is unavailable")
		return
	}
	defer closeFn()

	rc := http.NewResponseController(w)
	// The server's write timeout would otherwise cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		h.logger.WarnContext(ctx, "event stream cannot flush", "error", err)
		return
	}

	h.logger.InfoContext(ctx, "event stream opened", "user_id", userID)
	defer h.logger.InfoContext(ctx, "event stream closed", "user_id", userID)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
		case ev, ok := <-stream:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encode event", "type", ev.Type, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
