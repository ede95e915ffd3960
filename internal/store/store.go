// Package store keeps the client-side task list in sync with the backend.
//
// The store is the single owner of the task list. Mutations go to the
// backend first and the list is then reloaded; nothing is merged
// speculatively except the task returned by a create. Backend failures are
// logged, shown through the Notifier and returned to the caller. Nothing is
// retried.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jaekwang-park/vici/internal/backend"
	"github.com/jaekwang-park/vici/internal/cache"
	"github.com/jaekwang-park/vici/internal/form"
	"github.com/jaekwang-park/vici/internal/metrics"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/reorder"
)

var (
	ErrDeleteNotConfirmed = errors.New("store: delete not confirmed")
	ErrInvalidOrder       = errors.New("store: order is not a permutation of the task list")
)

const (
	DeletePrompt        = "Are you sure you want to delete this task?"
	notificationsLimit  = 20
	insightsCacheKey    = "insights"
	commsCacheKey       = "communications"
	notificationsKey    = "notifications"
	defaultReadCacheTTL = 5 * time.Minute
)

type Store struct {
	backend   backend.Backend
	notifier  Notifier
	confirmer Confirmer
	logger    *slog.Logger
	metrics   bool
	cache     *cache.Cache
	now       func() time.Time

	mu            sync.RWMutex
	tasks         []model.Task
	stats         model.Stats
	selected      string
	orderDirty    bool
	refreshSeq    uint64
	appliedSeq    uint64
	lastRefreshed time.Time

	insights      *cache.Fetcher[[]model.Insight]
	comms         *cache.Fetcher[[]model.CommunicationActivity]
	notifications *cache.Fetcher[[]model.Notification]
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

func WithConfirmer(c Confirmer) Option {
	return func(s *Store) { s.confirmer = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithCache(c *cache.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// WithMetrics records every backend call in the Prometheus collectors.
func WithMetrics(enabled bool) Option {
	return func(s *Store) { s.metrics = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(b backend.Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier{Logger: s.logger}
	}
	if s.cache == nil {
		s.cache = cache.New()
	}
	s.insights = cache.NewFetcher[[]model.Insight](s.cache, insightsCacheKey, defaultReadCacheTTL)
	s.comms = cache.NewFetcher[[]model.CommunicationActivity](s.cache, commsCacheKey, defaultReadCacheTTL)
	s.notifications = cache.NewFetcher[[]model.Notification](s.cache, notificationsKey, defaultReadCacheTTL)
	return s
}

func (s *Store) failed(ctx context.Context, op string, err error, msg string) {
	s.logger.ErrorContext(ctx, "backend call failed", "op", op, "error", err)
	if msg != "" {
		s.notifier.Error(msg)
	}
}

func (s *Store) record(op string, err error) {
	if s.metrics {
		metrics.RecordStoreCall(op, err)
	}
}

// Refresh reloads tasks and stats from one snapshot. On failure the current
// state is kept. A snapshot older than one already applied is discarded.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.refreshSeq++
	seq := s.refreshSeq
	s.mu.Unlock()

	snap, err := s.backend.GetSnapshot(ctx)
	s.record("refresh", err)
	if err != nil {
		s.failed(ctx, "refresh", err, "Failed to load tasks")
		return fmt.Errorf("refreshing tasks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.appliedSeq {
		return nil
	}
	s.appliedSeq = seq
	tasks := snap.Tasks
	if s.orderDirty {
		tasks = applyOrder(ids(s.tasks), tasks)
	}
	s.tasks = tasks
	s.stats = snap.Stats
	s.lastRefreshed = s.now()
	return nil
}

// Create validates d, sends it to the backend and reloads the list.
func (s *Store) Create(ctx context.Context, d model.Draft) (model.Task, error) {
	if errs := model.ValidateDraft(d); errs != nil {
		return model.Task{}, &form.ValidationError{Fields: errs}
	}

	created, err := s.backend.CreateTask(ctx, d)
	s.record("create", err)
	if err != nil {
		s.failed(ctx, "create", err, "Failed to create task")
		return model.Task{}, fmt.Errorf("creating task: %w", err)
	}

	s.mu.Lock()
	s.tasks = upsert(s.tasks, created)
	s.mu.Unlock()

	s.notifier.Success("Task created!")
	_ = s.Refresh(ctx)
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, p model.Patch) (model.Task, error) {
	if errs := model.ValidatePatch(p); errs != nil {
		return model.Task{}, &form.ValidationError{Fields: errs}
	}

	updated, err := s.backend.UpdateTask(ctx, id, p)
	s.record("update", err)
	if err != nil {
		s.failed(ctx, "update", err, "Failed to update task")
		return model.Task{}, fmt.Errorf("updating task %s: %w", id, err)
	}

	s.notifier.Success("Task updated!")
	_ = s.Refresh(ctx)
	return updated, nil
}

// ToggleStatus flips t between Completed and Pending.
func (s *Store) ToggleStatus(ctx context.Context, t model.Task) (model.Task, error) {
	status := t.ToggledStatus()
	return s.Update(ctx, t.ID, model.Patch{Status: &status})
}

// Delete asks the Confirmer first. Without a Confirmer, or when the user
// declines, the backend is not called and ErrDeleteNotConfirmed is returned.
func (s *Store) Delete(ctx context.Context, id string) error {
	if s.confirmer == nil {
		return ErrDeleteNotConfirmed
	}
	ok, err := s.confirmer.Confirm(ctx, DeletePrompt)
	if err != nil {
		return fmt.Errorf("confirming delete: %w", err)
	}
	if !ok {
		return ErrDeleteNotConfirmed
	}

	err = s.backend.DeleteTask(ctx, id)
	s.record("delete", err)
	if err != nil {
		s.failed(ctx, "delete", err, "Failed to delete task")
		return fmt.Errorf("deleting task %s: %w", id, err)
	}

	s.mu.Lock()
	if s.selected == id {
		s.selected = ""
	}
	s.mu.Unlock()

	s.notifier.Success("Task deleted")
	_ = s.Refresh(ctx)
	return nil
}

// TriggerAccountabilityCheck asks the backend for a check-in message and
// shows it.
func (s *Store) TriggerAccountabilityCheck(ctx context.Context) (string, error) {
	msg, err := s.backend.TriggerAccountabilityCheck(ctx)
	s.record("accountability_check", err)
	if err != nil {
		s.failed(ctx, "accountability_check", err, "Failed to trigger accountability check")
		return "", fmt.Errorf("triggering accountability check: %w", err)
	}
	s.notifier.Info(msg)
	s.notifications.Invalidate()
	return msg, nil
}

// Select marks id as the task keyboard actions apply to. An empty id clears
// the selection.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

func (s *Store) Selected() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.selected != ""
}

// Tasks returns a copy of the list in display order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

func (s *Store) Task(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

func (s *Store) Filter(f model.Filter) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Task{}
	for _, t := range s.tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Stats returns the statistics delivered with the last snapshot.
func (s *Store) Stats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// LocalStats computes statistics from the current list.
func (s *Store) LocalStats() model.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ComputeStats(s.tasks, s.now())
}

func (s *Store) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

func (s *Store) Insights(ctx context.Context, force bool) ([]model.Insight, error) {
	v, err := s.insights.Fetch(ctx, func(ctx context.Context) ([]model.Insight, error) {
		v, err := s.backend.GetAIInsights(ctx)
		s.record("insights", err)
		return v, err
	}, force)
	if err != nil && !errors.Is(err, cache.ErrSuperseded) {
		s.failed(ctx, "insights", err, "")
	}
	return v, err
}

func (s *Store) Communications(ctx context.Context, force bool) ([]model.CommunicationActivity, error) {
	v, err := s.comms.Fetch(ctx, func(ctx context.Context) ([]model.CommunicationActivity, error) {
		v, err := s.backend.GetCommunicationStatus(ctx)
		s.record("communications", err)
		return v, err
	}, force)
	if err != nil && !errors.Is(err, cache.ErrSuperseded) {
		s.failed(ctx, "communications", err, "")
	}
	return v, err
}

func (s *Store) Notifications(ctx context.Context, force bool) ([]model.Notification, error) {
	v, err := s.notifications.Fetch(ctx, func(ctx context.Context) ([]model.Notification, error) {
		v, err := s.backend.GetNotifications(ctx, notificationsLimit)
		s.record("notifications", err)
		return v, err
	}, force)
	if err != nil && !errors.Is(err, cache.ErrSuperseded) {
		s.failed(ctx, "notifications", err, "")
	}
	return v, err
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	err := s.backend.MarkNotificationRead(ctx, id)
	s.record("mark_notification_read", err)
	if err != nil {
		s.failed(ctx, "mark_notification_read", err, "")
		return fmt.Errorf("marking notification %s read: %w", id, err)
	}
	s.notifications.Invalidate()
	return nil
}

func upsert(tasks []model.Task, t model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks)+1)
	replaced := false
	for _, existing := range tasks {
		if existing.ID == t.ID {
			out = append(out, t)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, t)
	}
	return out
}

func ids(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// applyOrder sorts tasks by their position in order. Tasks missing from
// order keep their relative order after the known ones.
func applyOrder(order []string, tasks []model.Task) []model.Task {
	byID := make(map[string]model.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	out := make([]model.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, id := range order {
		if t, ok := byID[id]; ok && !seen[id] {
			out = append(out, t)
			seen[id] = true
		}
	}
	for _, t := range tasks {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// Reorder moves the task at canonical index from to index to. The new order
// lives in the store until PersistOrder sends it to the backend.
func (s *Store) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	moved, err := reorder.Move(s.tasks, from, to)
	if err != nil {
		return err
	}
	if from != to {
		s.orderDirty = true
	}
	s.tasks = moved
	return nil
}

// SetOrder replaces the display order with ids, which must name every task
// exactly once.
func (s *Store) SetOrder(order []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(order) != len(s.tasks) {
		return ErrInvalidOrder
	}
	known := make(map[string]bool, len(s.tasks))
	for _, t := range s.tasks {
		known[t.ID] = true
	}
	for _, id := range order {
		if !known[id] {
			return fmt.Errorf("%w: %q", ErrInvalidOrder, id)
		}
		delete(known, id)
	}
	s.tasks = applyOrder(order, s.tasks)
	s.orderDirty = true
	return nil
}

func (s *Store) OrderDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orderDirty
}

// PersistOrder sends the current display order to the backend.
func (s *Store) PersistOrder(ctx context.Context) error {
	s.mu.RLock()
	order := ids(s.tasks)
	s.mu.RUnlock()

	err := s.backend.PersistOrder(ctx, order)
	s.record("persist_order", err)
	if err != nil {
		s.failed(ctx, "persist_order", err, "Failed to save task order")
		return fmt.Errorf("persisting order: %w", err)
	}

	s.mu.Lock()
	if equalIDs(order, ids(s.tasks)) {
		s.orderDirty = false
	}
	s.mu.Unlock()
	return nil
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
