package service_test

import (
	"context"
	"strings"
	"sync"

	"github.com/jaekwang-park/vici/internal/mailer"
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

func listing(tasks ...model.Task) func(ctx context.Context, userID string) ([]model.Task, error) {
	return func(ctx context.Context, userID string) ([]model.Task, error) {
		return tasks, nil
	}
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

type published struct {
	userID string
	event  model.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	events []published
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, userID string, ev model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, published{userID: userID, event: ev})
	return f.err
}

func (f *fakePublisher) types() []model.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.EventType, len(f.events))
	for i, p := range f.events {
		out[i] = p.event.Type
	}
	return out
}

type fakeGenerator struct {
	insights []model.Insight
	message  string
}

func (f *fakeGenerator) Insights(ctx context.Context, tasks []model.Task) []model.Insight {
	return f.insights
}
func (f *fakeGenerator) AccountabilityMessage(ctx context.Context, tasks []model.Task) string {
	return f.message
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

func containsStr(s, substr string) bool {
	return strings.Contains(s, substr)
}
