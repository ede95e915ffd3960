package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/vici/internal/insight"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/repository"
)

const patternConfidence = 0.7

// InsightGenerator turns a task list into coaching text.
type InsightGenerator interface {
	Insights(ctx context.Context, tasks []model.Task) []model.Insight
	AccountabilityMessage(ctx context.Context, tasks []model.Task) string
}

var _ InsightGenerator = (*insight.Engine)(nil)

type InsightService struct {
	repo repository.TaskRepository
	gen  InsightGenerator
	now  func() time.Time
}

func NewInsightService(repo repository.TaskRepository, gen InsightGenerator) *InsightService {
	return &InsightService{repo: repo, gen: gen, now: time.Now}
}

// Insights returns generated insights followed by detected patterns.
func (s *InsightService) Insights(ctx context.Context, userID string) ([]model.Insight, error) {
	tasks, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks for insights: %w", err)
	}

	out := s.gen.Insights(ctx, tasks)
	now := s.now()
	for _, p := range insight.Patterns(tasks) {
		out = append(out, model.Insight{
			ID:          uuid.NewString(),
			Message:     p,
			InsightType: model.InsightPatternRecognition,
			Confidence:  patternConfidence,
			CreatedAt:   now,
		})
	}
	if out == nil {
		out = []model.Insight{}
	}
	return out, nil
}
