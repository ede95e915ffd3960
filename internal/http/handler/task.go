package handler

import (
	"net/http"
	"strings"

	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

type TaskHandler struct {
	svc *service.TaskService
}

func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

type taskListResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type orderRequest struct {
	IDs []string `json:"ids"`
}

// ServeHTTP routes /api/v1/tasks, /api/v1/tasks/order and /api/v1/tasks/{id}.
func (h *TaskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	taskID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/tasks"), "/")

	switch {
	case taskID == "":
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			methodNotAllowed(w)
		}
	case taskID == "order":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.handleReorder(w, r)
	case strings.Contains(taskID, "/"):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", "endpoint not found")
	default:
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, taskID)
		case http.MethodPut, http.MethodPatch:
			h.handleUpdate(w, r, taskID)
		case http.MethodDelete:
			h.handleDelete(w, r, taskID)
		default:
			methodNotAllowed(w)
		}
	}
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.svc.List(r.Context(), middleware.GetUserID(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, taskListResponse{Tasks: tasks})
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var draft model.Draft
	if !decodeBody(w, r, &draft) {
		return
	}

	task, err := h.svc.Create(r.Context(), middleware.GetUserID(r), draft)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) handleGet(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := h.svc.GetByID(r.Context(), middleware.GetUserID(r), taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request, taskID string) {
	var patch model.Patch
	if !decodeBody(w, r, &patch) {
		return
	}

	task, err := h.svc.Update(r.Context(), middleware.GetUserID(r), taskID, patch)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := h.svc.Delete(r.Context(), middleware.GetUserID(r), taskID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) handleReorder(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.svc.Reorder(r.Context(), middleware.GetUserID(r), req.IDs); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
