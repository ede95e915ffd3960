package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/service"
)

func TestStatsService_Snapshot(t *testing.T) {
	done := sampleTask()
	done.ID = "task-2"
	done.Status = model.StatusCompleted

	repo := &mockTaskRepo{listFn: listing(sampleTask(), done)}
	snap, err := service.NewStatsService(repo).Snapshot(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(snap.Tasks))
	}
	if snap.Stats.TotalTasks != 2 || snap.Stats.CompletedTasks != 1 || snap.Stats.PendingTasks != 1 {
		t.Errorf("unexpected stats: %+v", snap.Stats)
	}
}

func TestStatsService_Error(t *testing.T) {
	repo := &mockTaskRepo{
		listFn: func(ctx context.Context, userID string) ([]model.Task, error) {
			return nil, errors.New("db error")
		},
	}
	_, err := service.NewStatsService(repo).Stats(context.Background(), "user-1")
	if err == nil || !containsStr(err.Error(), "failed to load tasks for stats") {
		t.Fatalf("unexpected error: %v", err)
	}
}
