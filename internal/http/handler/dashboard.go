package handler

import (
	"net/http"
	"strings"

	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

// DashboardHandler serves the views derived from the task list (stats,
// snapshot, insights) and the communication status endpoints.
type DashboardHandler struct {
	stats    *service.StatsService
	insights *service.InsightService
	comms    *service.CommunicationService
}

func NewDashboardHandler(stats *service.StatsService, insights *service.InsightService, comms *service.CommunicationService) *DashboardHandler {
	return &DashboardHandler{stats: stats, insights: insights, comms: comms}
}

type insightsResponse struct {
	Insights []model.Insight `json:"insights"`
}

type communicationsResponse struct {
	Communications []model.CommunicationActivity `json:"communications"`
}

type connectResponse struct {
	Service string `json:"service"`
	Message string `json:"message"`
}

func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/v1/communications/") {
		h.handleConnect(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	ctx := r.Context()
	userID := middleware.GetUserID(r)

	switch r.URL.Path {
	case "/api/v1/stats":
		stats, err := h.stats.Stats(ctx, userID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, stats)
	case "/api/v1/snapshot":
		snap, err := h.stats.Snapshot(ctx, userID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, snap)
	case "/api/v1/insights":
		insights, err := h.insights.Insights(ctx, userID)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, insightsResponse{Insights: insights})
	case "/api/v1/communications":
		WriteJSON(w, http.StatusOK, communicationsResponse{Communications: h.comms.Status(ctx)})
	default:
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	}
}

// handleConnect serves POST /api/v1/communications/{service}/connect.
func (h *DashboardHandler) handleConnect(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/communications/"), "/")
	name, action, ok := strings.Cut(rest, "/")
	if !ok || action != "connect" || name == "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	msg, err := h.comms.Connect(name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, connectResponse{Service: name, Message: msg})
}
