package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/vici/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...ClientOption) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestGetTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tasks", r.URL.Path)
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{
			"tasks": []model.Task{{ID: "t1", Task: "Write", Priority: model.PriorityLow, EstimatedTime: 10}},
		})
	}, WithUserID("user-1"), WithToken("tok"))

	tasks, err := c.GetTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t1", tasks[0].ID)
}

func TestCreateTask_SendsDraft(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var d model.Draft
		require.NoError(t, json.NewDecoder(r.Body).Decode(&d))
		assert.Equal(t, "Write report", d.Task)

		writeJSON(w, http.StatusCreated, model.Task{ID: "new", Task: d.Task, Priority: d.Priority})
	})

	got, err := c.CreateTask(context.Background(), model.Draft{Task: "Write report", Priority: model.PriorityHigh, EstimatedTime: 30})
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
}

func TestDeleteTask_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tasks/t 1", r.URL.Path)
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]string{"code": "NOT_FOUND", "message": "resource not found"},
		})
	})

	err := c.DeleteTask(context.Background(), "t 1")
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestUpdateTask_ValidationFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{
				"code":    "INVALID_INPUT",
				"message": "invalid input",
				"fields":  map[string]string{"task": "Task description is required"},
			},
		})
	})

	empty := ""
	_, err := c.UpdateTask(context.Background(), "t1", model.Patch{Task: &empty})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Task description is required", apiErr.Fields[model.FieldTask])
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNonEnvelopeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.GetSnapshot(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP_ERROR", apiErr.Code)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestGetNotifications_Limit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{"notifications": []model.Notification{{ID: "n1"}}})
	})

	got, err := c.GetNotifications(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestPersistOrder(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/tasks/order", r.URL.Path)
		var body orderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"b", "a"}, body.IDs)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PersistOrder(context.Background(), []string{"b", "a"}))
}

func TestTriggerAccountabilityCheck(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Keep going"})
	})

	msg, err := c.TriggerAccountabilityCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Keep going", msg)
}

func TestConnectCommunication(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/communications/discord/connect", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"service": "discord", "message": "Discord bot connection initiated."})
	})

	msg, err := c.ConnectCommunication(context.Background(), "discord")
	require.NoError(t, err)
	assert.Equal(t, "Discord bot connection initiated.", msg)
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]string{"code": "NOT_AUTHORIZED", "message": "incorrect email or password"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id_token": "id", "access_token": "access", "expires_in": 3600, "token_type": "Bearer"})
	})

	tokens, err := c.Login(context.Background(), "dev@vici.local", "secret")
	require.NoError(t, err)
	assert.Equal(t, "id", tokens.IDToken)
	assert.Equal(t, int32(3600), tokens.ExpiresIn)

	_, err = c.Login(context.Background(), "dev@vici.local", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "NOT_AUTHORIZED", apiErr.Code)
}

func TestEvents(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, "event: task_updated\ndata: {\"type\":\"task_updated\",\"at\":\"2025-01-01T00:00:00Z\"}\n\n")
		fmt.Fprint(w, "data: not json\n\n")
		fmt.Fprint(w, "event: notification\ndata: {\"payload\":{\"title\":\"Hi\"},\n")
		fmt.Fprint(w, "data: \"at\":\"2025-01-01T00:00:00Z\"}\n\n")
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, err := c.Events(ctx)
	require.NoError(t, err)

	var got []model.Event
	for ev := range ch {
		got = append(got, ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, model.EventTaskUpdated, got[0].Type)
	assert.Equal(t, model.EventNotification, got[1].Type)
	assert.JSONEq(t, `{"title":"Hi"}`, string(got[1].Payload))
}

func TestEvents_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"error": map[string]string{"code": "UNAUTHORIZED", "message": "no"},
		})
	})

	_, err := c.Events(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}
