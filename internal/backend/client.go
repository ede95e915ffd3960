package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaekwang-park/vici/internal/model"
)

const defaultTimeout = 10 * time.Second

type HTTPClient struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	token   string
	userID  string
	logger  *slog.Logger
}

var _ Backend = (*HTTPClient)(nil)

type ClientOption func(*HTTPClient)

// WithHTTPClient replaces the client used for commands. Streams use a copy
// of it without a timeout.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(h *HTTPClient) { h.http = c }
}

func WithTimeout(d time.Duration) ClientOption {
	return func(h *HTTPClient) {
		if d > 0 {
			h.http.Timeout = d
		}
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) ClientOption {
	return func(h *HTTPClient) { h.token = token }
}

// WithUserID sends the X-User-ID header accepted by servers in dev mode.
func WithUserID(id string) ClientOption {
	return func(h *HTTPClient) { h.userID = id }
}

func WithLogger(l *slog.Logger) ClientOption {
	return func(h *HTTPClient) { h.logger = l }
}

func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	stream := *h.http
	stream.Timeout = 0
	h.stream = &stream
	return h
}

type tasksResponse struct {
	Tasks []model.Task `json:"tasks"`
}

type insightsResponse struct {
	Insights []model.Insight `json:"insights"`
}

type communicationsResponse struct {
	Communications []model.CommunicationActivity `json:"communications"`
}

type notificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
}

type orderRequest struct {
	IDs []string `json:"ids"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func (h *HTTPClient) GetTasks(ctx context.Context) ([]model.Task, error) {
	var resp tasksResponse
	if err := h.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

func (h *HTTPClient) CreateTask(ctx context.Context, d model.Draft) (model.Task, error) {
	var t model.Task
	err := h.do(ctx, http.MethodPost, "/api/v1/tasks", d, &t)
	return t, err
}

func (h *HTTPClient) UpdateTask(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	var t model.Task
	err := h.do(ctx, http.MethodPut, "/api/v1/tasks/"+url.PathEscape(id), p, &t)
	return t, err
}

func (h *HTTPClient) DeleteTask(ctx context.Context, id string) error {
	return h.do(ctx, http.MethodDelete, "/api/v1/tasks/"+url.PathEscape(id), nil, nil)
}

func (h *HTTPClient) PersistOrder(ctx context.Context, ids []string) error {
	return h.do(ctx, http.MethodPut, "/api/v1/tasks/order", orderRequest{IDs: ids}, nil)
}

func (h *HTTPClient) GetProductivityStats(ctx context.Context) (model.Stats, error) {
	var s model.Stats
	err := h.do(ctx, http.MethodGet, "/api/v1/stats", nil, &s)
	return s, err
}

func (h *HTTPClient) GetSnapshot(ctx context.Context) (model.Snapshot, error) {
	var s model.Snapshot
	err := h.do(ctx, http.MethodGet, "/api/v1/snapshot", nil, &s)
	return s, err
}

func (h *HTTPClient) GetAIInsights(ctx context.Context) ([]model.Insight, error) {
	var resp insightsResponse
	if err := h.do(ctx, http.MethodGet, "/api/v1/insights", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Insights, nil
}

func (h *HTTPClient) GetCommunicationStatus(ctx context.Context) ([]model.CommunicationActivity, error) {
	var resp communicationsResponse
	if err := h.do(ctx, http.MethodGet, "/api/v1/communications", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Communications, nil
}

func (h *HTTPClient) GetNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	path := "/api/v1/notifications"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var resp notificationsResponse
	if err := h.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Notifications, nil
}

func (h *HTTPClient) MarkNotificationRead(ctx context.Context, id string) error {
	return h.do(ctx, http.MethodPatch, "/api/v1/notifications/"+url.PathEscape(id)+"/read", nil, nil)
}

func (h *HTTPClient) TriggerAccountabilityCheck(ctx context.Context) (string, error) {
	var resp messageResponse
	if err := h.do(ctx, http.MethodPost, "/api/v1/accountability", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ConnectCommunication asks the backend how to connect service.
func (h *HTTPClient) ConnectCommunication(ctx context.Context, service string) (string, error) {
	var resp messageResponse
	if err := h.do(ctx, http.MethodPost, "/api/v1/communications/"+url.PathEscape(service)+"/connect", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Tokens are the credentials returned by a successful login.
type Tokens struct {
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int32  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for tokens. The ID token is the one the API
// accepts as a bearer token.
func (h *HTTPClient) Login(ctx context.Context, email, password string) (Tokens, error) {
	var out Tokens
	if err := h.do(ctx, http.MethodPost, "/api/v1/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return Tokens{}, err
	}
	return out, nil
}

func (h *HTTPClient) Events(ctx context.Context) (<-chan model.Event, error) {
	req, err := h.newRequest(ctx, http.MethodGet, "/api/v1/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := h.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opening event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	ch := make(chan model.Event)
	go func() {
		defer close(ch)
		defer resp.Body.Close()
		err := readEvents(ctx, resp.Body, ch)
		if err != nil && ctx.Err() == nil {
			h.logger.Warn("event stream ended", "error", err)
		}
	}()
	return ch, nil
}

func (h *HTTPClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		r = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
	if h.userID != "" {
		req.Header.Set("X-User-ID", h.userID)
	}
	return req, nil
}

func (h *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	req, err := h.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	h.logger.DebugContext(ctx, "backend request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Code: "HTTP_ERROR", Message: resp.Status}

	var env errorEnvelope
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if json.Unmarshal(data, &env) == nil && env.Error.Code != "" {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		if len(env.Error.Fields) > 0 {
			apiErr.Fields = model.FieldErrors(env.Error.Fields)
		}
	}
	return apiErr
}
