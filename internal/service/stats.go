package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/repository"
)

// StatsService derives productivity figures from the stored task list.
type StatsService struct {
	repo repository.TaskRepository
	now  func() time.Time
}

func NewStatsService(repo repository.TaskRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

func (s *StatsService) Stats(ctx context.Context, userID string) (model.Stats, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to load tasks for stats: %w", err)
	}
	return model.ComputeStats(tasks, s.now()), nil
}

// Snapshot returns tasks and stats computed from the same read.
func (s *StatsService) Snapshot(ctx context.Context, userID string) (model.Snapshot, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return model.Snapshot{Tasks: tasks, Stats: model.ComputeStats(tasks, s.now())}, nil
}
