package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaekwang-park/vici/internal/events"
	"github.com/jaekwang-park/vici/internal/metrics"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/repository"
)

// TaskChange is the payload of a task_updated event.
type TaskChange struct {
	Action string `json:"action"`
	TaskID string `json:"task_id,omitempty"`
}

const (
	ActionCreated   = "created"
	ActionUpdated   = "updated"
	ActionDeleted   = "deleted"
	ActionReordered = "reordered"
)

type TaskService struct {
	repo   repository.TaskRepository
	pub    publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewTaskService creates a TaskService. publisher may be nil.
func NewTaskService(repo repository.TaskRepository, pub events.Publisher, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{
		repo:   repo,
		pub:    newPublisher(pub, logger),
		logger: logger,
		now:    time.Now,
	}
}

func invalid(fe model.FieldErrors) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, fe)
}

func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetByID(ctx context.Context, userID, taskID string) (model.Task, error) {
	task, err := s.repo.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, draft model.Draft) (model.Task, error) {
	draft.Task = strings.TrimSpace(draft.Task)
	if fe := model.ValidateDraft(draft); fe != nil {
		return model.Task{}, invalid(fe)
	}

	task := model.Task{
		Task:          draft.Task,
		Priority:      draft.Priority,
		EstimatedTime: draft.EstimatedTime,
		Category:      draft.Category,
		Status:        model.StatusPending,
		DueAt:         draft.DueAt,
	}

	created, err := s.repo.Create(ctx, userID, task)
	metrics.RecordTaskMutation("create", err)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}

	s.pub.publish(ctx, userID, model.EventTaskUpdated, TaskChange{Action: ActionCreated, TaskID: created.ID})
	return created, nil
}

func (s *TaskService) Update(ctx context.Context, userID, taskID string, patch model.Patch) (model.Task, error) {
	if patch.IsEmpty() {
		return model.Task{}, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}
	if fe := model.ValidatePatch(patch); fe != nil {
		return model.Task{}, invalid(fe)
	}

	existing, err := s.repo.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to get task for update: %w", err)
	}

	updated, err := s.repo.Update(ctx, userID, patch.Apply(existing, s.now()))
	metrics.RecordTaskMutation("update", err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, ErrNotFound
		}
		return model.Task{}, fmt.Errorf("failed to update task: %w", err)
	}

	s.pub.publish(ctx, userID, model.EventTaskUpdated, TaskChange{Action: ActionUpdated, TaskID: updated.ID})
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, taskID string) error {
	err := s.repo.Delete(ctx, userID, taskID)
	metrics.RecordTaskMutation("delete", err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.pub.publish(ctx, userID, model.EventTaskUpdated, TaskChange{Action: ActionDeleted, TaskID: taskID})
	return nil
}

// Reorder persists a new positional order. ids must be a permutation of
// the user's task IDs.
func (s *TaskService) Reorder(ctx context.Context, userID string, ids []string) error {
	current, err := s.repo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list tasks for reorder: %w", err)
	}
	if err := checkPermutation(current, ids); err != nil {
		return err
	}

	err = s.repo.Reorder(ctx, userID, ids)
	metrics.RecordTaskMutation("reorder", err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to reorder tasks: %w", err)
	}

	s.pub.publish(ctx, userID, model.EventTaskUpdated, TaskChange{Action: ActionReordered})
	return nil
}

func checkPermutation(tasks []model.Task, ids []string) error {
	if len(ids) != len(tasks) {
		return fmt.Errorf("%w: expected %d ids, got %d", ErrInvalidInput, len(tasks), len(ids))
	}
	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = false
	}
	for _, id := range ids {
		seen, ok := known[id]
		if !ok {
			return fmt.Errorf("%w: unknown task id %q", ErrInvalidInput, id)
		}
		if seen {
			return fmt.Errorf("%w: duplicate task id %q", ErrInvalidInput, id)
		}
		known[id] = true
	}
	return nil
}
