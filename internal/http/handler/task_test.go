package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jaekwang-park/vici/internal/http/handler"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

func newTaskHandler(repo *mockTaskRepo) *handler.TaskHandler {
	return handler.NewTaskHandler(service.NewTaskService(repo, nil, nil))
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "t-1", Task: "Write report", Priority: model.PriorityHigh, EstimatedTime: 60, Status: model.StatusPending},
		{ID: "t-2", Task: "Call dentist", Priority: model.PriorityLow, EstimatedTime: 10, Status: model.StatusCompleted},
	}
}

func TestTaskHandler_List(t *testing.T) {
	var gotUser string
	h := newTaskHandler(&mockTaskRepo{
		listFn: func(ctx context.Context, userID string) ([]model.Task, error) {
			gotUser = userID
			return sampleTasks(), nil
		},
	})

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil), "user-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if gotUser != "user-1" {
		t.Errorf("expected user-1, got %s", gotUser)
	}

	var result struct {
		Tasks []model.Task `json:"tasks"`
	}
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(result.Tasks) != 2 || result.Tasks[0].ID != "t-1" || result.Tasks[1].ID != "t-2" {
		t.Errorf("unexpected tasks: %+v", result.Tasks)
	}
}

func TestTaskHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{
			name:       "valid",
			body:       `{"task":"  Write report  ","priority":"high","estimatedTime":30,"category":"work"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "description too short",
			body:       `{"task":"ab","priority":"high","estimatedTime":30}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "task",
		},
		{
			name:       "estimate out of range",
			body:       `{"task":"Write report","priority":"high","estimatedTime":500}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
			wantField:  "estimatedTime",
		},
		{
			name:       "malformed json",
			body:       `{"task":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created model.Task
			h := newTaskHandler(&mockTaskRepo{
				createFn: func(ctx context.Context, userID string, task model.Task) (model.Task, error) {
					task.ID = "t-new"
					created = task
					return task, nil
				},
			})

			req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewBufferString(tt.body)), "user-1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				if created.Task != "Write report" {
					t.Errorf("expected trimmed description, got %q", created.Task)
				}
				if created.Status != model.StatusPending {
					t.Errorf("expected status Pending, got %s", created.Status)
				}
				return
			}

			var result handler.ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if result.Error.Code != tt.wantCode {
				t.Errorf("expected code=%s, got %s", tt.wantCode, result.Error.Code)
			}
			if tt.wantField != "" && result.Error.Fields[tt.wantField] == "" {
				t.Errorf("expected field error for %s, got %v", tt.wantField, result.Error.Fields)
			}
		})
	}
}

func TestTaskHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{"found", nil, http.StatusOK},
		{"not found", sql.ErrNoRows, http.StatusNotFound},
		{"repository failure", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTaskHandler(&mockTaskRepo{
				getByIDFn: func(ctx context.Context, userID, taskID string) (model.Task, error) {
					if tt.repoErr != nil {
						return model.Task{}, tt.repoErr
					}
					return model.Task{ID: taskID, Task: "Write report"}, nil
				},
			})

			req := asUser(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/t-1", nil), "user-1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestTaskHandler_Update_CompletesTask(t *testing.T) {
	var saved model.Task
	h := newTaskHandler(&mockTaskRepo{
		getByIDFn: func(ctx context.Context, userID, taskID string) (model.Task, error) {
			return model.Task{ID: taskID, Task: "Write report", Priority: model.PriorityHigh, EstimatedTime: 30, Status: model.StatusPending}, nil
		},
		updateFn: func(ctx context.Context, userID string, task model.Task) (model.Task, error) {
			saved = task
			return task, nil
		},
	})

	body := `{"status":"Completed","actualTime":25}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/v1/tasks/t-1", bytes.NewBufferString(body)), "user-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d (body: %s)", w.Code, w.Body.String())
	}
	if saved.Status != model.StatusCompleted {
		t.Errorf("expected Completed, got %s", saved.Status)
	}
	if saved.CompletedAt == nil {
		t.Error("expected completedAt to be stamped")
	}
	if saved.ActualTime == nil || *saved.ActualTime != 25 {
		t.Errorf("expected actualTime 25, got %v", saved.ActualTime)
	}
}

func TestTaskHandler_Update_EmptyPatch(t *testing.T) {
	h := newTaskHandler(&mockTaskRepo{})

	req := asUser(httptest.NewRequest(http.MethodPut, "/api/v1/tasks/t-1", bytes.NewBufferString(`{}`)), "user-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestTaskHandler_Delete(t *testing.T) {
	tests := []struct {
		name       string
		repoErr    error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"missing", sql.ErrNoRows, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTaskHandler(&mockTaskRepo{
				deleteFn: func(ctx context.Context, userID, taskID string) error {
					return tt.repoErr
				},
			})

			req := asUser(httptest.NewRequest(http.MethodDelete, "/api/v1/tasks/t-1", nil), "user-1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestTaskHandler_Reorder(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantSaved  []string
	}{
		{"full permutation", `{"ids":["t-2","t-1"]}`, http.StatusNoContent, []string{"t-2", "t-1"}},
		{"missing id", `{"ids":["t-2"]}`, http.StatusBadRequest, nil},
		{"unknown id", `{"ids":["t-2","t-9"]}`, http.StatusBadRequest, nil},
		{"duplicate id", `{"ids":["t-2","t-2"]}`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var saved []string
			h := newTaskHandler(&mockTaskRepo{
				listFn: func(ctx context.Context, userID string) ([]model.Task, error) {
					return sampleTasks(), nil
				},
				reorderFn: func(ctx context.Context, userID string, ids []string) error {
					saved = ids
					return nil
				},
			})

			req := asUser(httptest.NewRequest(http.MethodPut, "/api/v1/tasks/order", bytes.NewBufferString(tt.body)), "user-1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.wantStatus, w.Code, w.Body.String())
			}
			if len(saved) != len(tt.wantSaved) {
				t.Fatalf("expected saved %v, got %v", tt.wantSaved, saved)
			}
			for i := range saved {
				if saved[i] != tt.wantSaved[i] {
					t.Errorf("position %d: expected %s, got %s", i, tt.wantSaved[i], saved[i])
				}
			}
		})
	}
}

func TestTaskHandler_Routing(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"collection patch", http.MethodPatch, "/api/v1/tasks", http.StatusMethodNotAllowed},
		{"order get", http.MethodGet, "/api/v1/tasks/order", http.StatusMethodNotAllowed},
		{"item post", http.MethodPost, "/api/v1/tasks/t-1", http.StatusMethodNotAllowed},
		{"nested path", http.MethodGet, "/api/v1/tasks/t-1/extra", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTaskHandler(&mockTaskRepo{})

			req := asUser(httptest.NewRequest(tt.method, tt.path, nil), "user-1")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}
