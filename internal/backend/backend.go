// Package backend defines the commands the task store sends to the backend
// service, and an HTTP client that implements them.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaekwang-park/vici/internal/model"
)

var ErrNotFound = errors.New("backend: not found")

// Backend is the asynchronous command interface of the task service. Every
// call may fail with a transport or service error.
type Backend interface {
	GetTasks(ctx context.Context) ([]model.Task, error)
	CreateTask(ctx context.Context, d model.Draft) (model.Task, error)
	UpdateTask(ctx context.Context, id string, p model.Patch) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	PersistOrder(ctx context.Context, ids []string) error

	GetProductivityStats(ctx context.Context) (model.Stats, error)
	// GetSnapshot returns tasks and the stats computed from the same state.
	GetSnapshot(ctx context.Context) (model.Snapshot, error)
	GetAIInsights(ctx context.Context) ([]model.Insight, error)
	GetCommunicationStatus(ctx context.Context) ([]model.CommunicationActivity, error)
	GetNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	TriggerAccountabilityCheck(ctx context.Context) (string, error)

	// Events streams push events until ctx is done or the stream ends.
	// The channel is closed on return.
	Events(ctx context.Context) (<-chan model.Event, error)
}

// APIError is a non-2xx response decoded from the service's error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  model.FieldErrors
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == 404 {
		return ErrNotFound
	}
	return nil
}
