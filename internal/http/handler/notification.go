package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

const defaultNotificationLimit = 20

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

type accountabilityResponse struct {
	Message string `json:"message"`
}

// ServeHTTP routes /api/v1/notifications, /api/v1/notifications/{id}/read
// and /api/v1/accountability.
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/accountability" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h.handleAccountability(w, r)
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/notifications"), "/")
	if rest == "" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.handleList(w, r)
		return
	}

	id, action, ok := strings.Cut(rest, "/")
	if !ok || action != "read" || id == "" {
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
		return
	}
	if r.Method != http.MethodPatch && r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	h.handleMarkRead(w, r, id)
}

func (h *NotificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 || l > 100 {
			WriteError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
			return
		}
		limit = l
	}

	list, err := h.svc.List(r.Context(), middleware.GetUserID(r), limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, notificationsResponse{Notifications: list})
}

func (h *NotificationHandler) handleMarkRead(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.svc.MarkRead(r.Context(), middleware.GetUserID(r), id); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) handleAccountability(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.AccountabilityCheck(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, accountabilityResponse{Message: msg})
}
