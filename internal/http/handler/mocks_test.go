package handler_test

import (
	"context"
	"net/http"

	"github.com/jaekwang-park/vici/internal/communication"
	"github.com/jaekwang-park/vici/internal/middleware"
	"github.com/jaekwang-park/vici/internal/model"
)

// mockTaskRepo implements repository.TaskRepository for testing
type mockTaskRepo struct {
	createFn  func(ctx context.Context, userID string, task model.Task) (model.Task, error)
	getByIDFn func(ctx context.Context, userID, taskID string) (model.Task, error)
	updateFn  func(ctx context.Context, userID string, task model.Task) (model.Task, error)
	deleteFn  func(ctx context.Context, userID, taskID string) error
	listFn    func(ctx context.Context, userID string) ([]model.Task, error)
	reorderFn func(ctx context.Context, userID string, ids []string) error
}

func (m *mockTaskRepo) Create(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	return m.createFn(ctx, userID, task)
}
func (m *mockTaskRepo) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	return m.getByIDFn(ctx, userID, taskID)
}
func (m *mockTaskRepo) Update(ctx context.Context, userID string, task model.Task) (model.Task, error) {
	return m.updateFn(ctx, userID, task)
}
func (m *mockTaskRepo) Delete(ctx context.Context, userID, taskID string) error {
	return m.deleteFn(ctx, userID, taskID)
}
func (m *mockTaskRepo) List(ctx context.Context, userID string) ([]model.Task, error) {
	return m.listFn(ctx, userID)
}
func (m *mockTaskRepo) Reorder(ctx context.Context, userID string, ids []string) error {
	return m.reorderFn(ctx, userID, ids)
}

type mockNotificationRepo struct {
	createFn   func(ctx context.Context, n model.Notification) (model.Notification, error)
	listFn     func(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	markReadFn func(ctx context.Context, userID, notificationID string) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n model.Notification) (model.Notification, error) {
	return m.createFn(ctx, n)
}
func (m *mockNotificationRepo) List(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	return m.listFn(ctx, userID, limit)
}
func (m *mockNotificationRepo) MarkRead(ctx context.Context, userID, notificationID string) error {
	return m.markReadFn(ctx, userID, notificationID)
}

type fakeGenerator struct {
	insights []model.Insight
	message  string
}

func (f fakeGenerator) Insights(ctx context.Context, tasks []model.Task) []model.Insight {
	return f.insights
}
func (f fakeGenerator) AccountabilityMessage(ctx context.Context, tasks []model.Task) string {
	return f.message
}

type fakeSource []model.CommunicationActivity

func (f fakeSource) Status(ctx context.Context) []model.CommunicationActivity {
	return f
}
func (f fakeSource) Connect(service string) (string, error) {
	for _, a := range f {
		if a.Service == service {
			return "connect " + service, nil
		}
	}
	return "", communication.ErrUnknownService
}

type fakeSubscriber struct {
	stream chan model.Event
	err    error
	userID string
	closed bool
}

func (f *fakeSubscriber) Subscribe(ctx context.Context, userID string) (<-chan model.Event, func() error, error) {
	f.userID = userID
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.stream, func() error {
		f.closed = true
		return nil
	}, nil
}

// asUser attaches userID to the request the way the auth middleware does.
func asUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.SetUserID(r.Context(), userID))
}
