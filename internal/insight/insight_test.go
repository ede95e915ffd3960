package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/vici/internal/model"
)

type fakeCompleter struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string, maxTokens int64) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2025, 5, 1, hour, 0, 0, 0, time.UTC) }
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func tasks(completed, pendingHigh, pendingLow int) []model.Task {
	var out []model.Task
	for i := 0; i < completed; i++ {
		out = append(out, model.Task{Status: model.StatusCompleted, Priority: model.PriorityLow, Category: "work"})
	}
	for i := 0; i < pendingHigh; i++ {
		out = append(out, model.Task{Status: model.StatusPending, Priority: model.PriorityHigh, Category: "work"})
	}
	for i := 0; i < pendingLow; i++ {
		out = append(out, model.Task{Status: model.StatusPending, Priority: model.PriorityLow, Category: "health"})
	}
	return out
}

func messages(in []model.Insight) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = v.Message
	}
	return out
}

func TestRuleInsights(t *testing.T) {
	tests := []struct {
		name  string
		tasks []model.Task
		hour  int
		want  []string
	}{
		{
			name: "empty list",
			hour: 8,
			want: []string{"Start by adding your daily tasks to track progress effectively."},
		},
		{
			name:  "high completion in the morning",
			tasks: tasks(4, 0, 1),
			hour:  10,
			want: []string{
				"Excellent progress! You've completed 80% of your tasks.",
				"Peak productivity hours: 9-11 AM. Use this time for challenging tasks.",
			},
		},
		{
			name:  "half done after lunch",
			tasks: tasks(2, 0, 2),
			hour:  15,
			want: []string{
				"Good momentum! Focus on completing the remaining 2 tasks.",
				"Post-lunch dip is normal. Consider lighter tasks or a short break.",
			},
		},
		{
			name:  "high priority pending",
			tasks: tasks(0, 2, 1),
			hour:  21,
			want:  []string{"2 high-priority tasks need attention. Consider tackling these first."},
		},
		{
			name:  "low priority backlog",
			tasks: tasks(0, 0, 3),
			hour:  18,
			want: []string{
				"Break down large tasks into smaller, manageable chunks for better progress.",
				"End of workday approaching. Review what you've accomplished today.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(WithClock(at(tt.hour)))
			assert.Equal(t, tt.want, messages(e.Insights(context.Background(), tt.tasks)))
		})
	}
}

func TestRuleInsights_Overdue(t *testing.T) {
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	list := []model.Task{{Status: model.StatusPending, Priority: model.PriorityLow, DueAt: &due}}

	e := NewEngine(WithClock(at(10)))
	got := e.Insights(context.Background(), list)

	require.Len(t, got, 3)
	assert.Equal(t, "1 tasks are overdue. Prioritize these to get back on track.", got[1].Message)
	assert.Equal(t, model.InsightTimeManagement, got[1].InsightType)
}

func TestInsights_UsesModel(t *testing.T) {
	llm := &fakeCompleter{text: "Do the hard thing first\n\n  Take breaks  \nReview daily\nExtra line"}
	e := NewEngine(WithCompleter(llm), WithClock(at(10)))

	got := e.Insights(context.Background(), tasks(1, 1, 0))

	assert.Equal(t, []string{"Do the hard thing first", "Take breaks", "Review daily"}, messages(got))
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "High priority pending: 1")
	for _, in := range got {
		assert.NotEmpty(t, in.ID)
	}
}

func TestInsights_FallsBackOnModelError(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("rate limited")}
	e := NewEngine(WithCompleter(llm), WithClock(at(8)), WithLogger(quietLogger()))

	got := e.Insights(context.Background(), nil)
	assert.Equal(t, []string{"Start by adding your daily tasks to track progress effectively."}, messages(got))
}

func TestAccountabilityMessage(t *testing.T) {
	t.Run("model", func(t *testing.T) {
		llm := &fakeCompleter{text: "Two down, one to go!"}
		e := NewEngine(WithCompleter(llm), WithClock(at(10)))
		assert.Equal(t, "Two down, one to go!", e.AccountabilityMessage(context.Background(), tasks(2, 1, 0)))
		assert.Contains(t, llm.prompts[0], "2 completed tasks")
	})

	t.Run("fallback", func(t *testing.T) {
		e := NewEngine(WithCompleter(&fakeCompleter{err: errors.New("down")}), WithClock(at(10)), WithLogger(quietLogger()))
		msg := e.AccountabilityMessage(context.Background(), tasks(2, 1, 0))
		assert.Equal(t, fallbackAccountability(2, 1, at(10)()), msg)
		assert.NotEmpty(t, msg)
	})
}

func TestPatterns(t *testing.T) {
	actual := 30
	list := tasks(0, 1, 2)
	list = append(list, model.Task{Status: model.StatusCompleted, Priority: model.PriorityLow, Category: "health", ActualTime: &actual})

	got := Patterns(list)
	assert.Equal(t, []string{
		"Most frequent category: health (3 tasks)",
		"Average completion time: 30.0 minutes",
		"25% of tasks are high priority",
	}, got)

	assert.Empty(t, Patterns(nil))
}

func TestNewClaude_RequiresKey(t *testing.T) {
	_, err := NewClaude("", "")
	assert.Error(t, err)

	c, err := NewClaude("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, string(c.model))
}
