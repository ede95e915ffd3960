// Package insight produces productivity insights and accountability
// check-in messages for a task list. A language model is used when one is
// configured; otherwise, or when it fails, fixed rules apply.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jaekwang-park/vici/internal/model"
)

const maxInsights = 3

const (
	insightsSystem = "You are an AI productivity coach that provides brief, actionable insights. " +
		"Each insight should be under 100 characters and actionable."
	accountabilitySystem = "You are a supportive productivity coach. " +
		"Create brief, encouraging check-in messages under 150 characters."
)

type Engine struct {
	llm    Completer
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Engine)

// WithCompleter enables model-generated text. A nil Completer keeps the rules.
func WithCompleter(c Completer) Option {
	return func(e *Engine) { e.llm = c }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type summary struct {
	total, completed, pending, highPending, overdue int
}

func summarize(tasks []model.Task, now time.Time) summary {
	s := summary{total: len(tasks)}
	for _, t := range tasks {
		if t.Completed() {
			s.completed++
			continue
		}
		s.pending++
		if t.Priority == model.PriorityHigh {
			s.highPending++
		}
		if t.Overdue(now) {
			s.overdue++
		}
	}
	return s
}

// Insights returns at most three insights for tasks.
func (e *Engine) Insights(ctx context.Context, tasks []model.Task) []model.Insight {
	now := e.now()
	s := summarize(tasks, now)

	if e.llm != nil {
		lines, err := e.modelInsights(ctx, s)
		if err == nil && len(lines) > 0 {
			out := make([]model.Insight, len(lines))
			for i, l := range lines {
				out[i] = newInsight(l, model.InsightProductivityTip, 0.8, now)
			}
			return out
		}
		e.logger.WarnContext(ctx, "model insights failed, using rules", "error", err)
	}
	return e.ruleInsights(s, now)
}

func (e *Engine) modelInsights(ctx context.Context, s summary) ([]string, error) {
	prompt := fmt.Sprintf(`Analyze this productivity data and provide 3 brief, actionable insights (each under 100 characters):

Tasks Status:
- Total tasks: %d
- Completed: %d
- High priority pending: %d
- Overdue: %d

Focus on task completion strategies, time management, and motivation. Keep responses concise and encouraging.`,
		s.total, s.completed, s.highPending, s.overdue)

	text, err := e.llm.Complete(ctx, insightsSystem, prompt, 300)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
		if len(lines) == maxInsights {
			break
		}
	}
	return lines, nil
}

func (e *Engine) ruleInsights(s summary, now time.Time) []model.Insight {
	var out []model.Insight
	add := func(msg string, typ model.InsightType) {
		out = append(out, newInsight(msg, typ, 0.6, now))
	}

	if s.total == 0 {
		add("Start by adding your daily tasks to track progress effectively.", model.InsightProductivityTip)
	} else {
		rate := float64(s.completed) / float64(s.total) * 100
		switch {
		case rate >= 80:
			add(fmt.Sprintf("Excellent progress! You've completed %.0f%% of your tasks.", rate), model.InsightProductivityTip)
		case rate >= 50:
			add(fmt.Sprintf("Good momentum! Focus on completing the remaining %d tasks.", s.total-s.completed), model.InsightProductivityTip)
		case s.highPending > 0:
			add(fmt.Sprintf("%d high-priority tasks need attention. Consider tackling these first.", s.highPending), model.InsightTaskPrioritization)
		default:
			add("Break down large tasks into smaller, manageable chunks for better progress.", model.InsightProductivityTip)
		}
	}

	if s.overdue > 0 {
		add(fmt.Sprintf("%d tasks are overdue. Prioritize these to get back on track.", s.overdue), model.InsightTimeManagement)
	}

	switch h := now.Hour(); {
	case h >= 9 && h <= 11:
		add("Peak productivity hours: 9-11 AM. Use this time for challenging tasks.", model.InsightTimeManagement)
	case h >= 14 && h <= 16:
		add("Post-lunch dip is normal. Consider lighter tasks or a short break.", model.InsightTimeManagement)
	case h >= 17 && h <= 19:
		add("End of workday approaching. Review what you've accomplished today.", model.InsightTimeManagement)
	}

	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}

// AccountabilityMessage returns a short check-in message for tasks.
func (e *Engine) AccountabilityMessage(ctx context.Context, tasks []model.Task) string {
	now := e.now()
	s := summarize(tasks, now)

	if e.llm != nil {
		prompt := fmt.Sprintf(`Generate a brief, encouraging accountability check-in message (under 150 characters) based on:
- %d completed tasks
- %d pending tasks
- Current time: %s

Keep it motivating, specific, and actionable.`, s.completed, s.pending, now.Format("15:04"))

		msg, err := e.llm.Complete(ctx, accountabilitySystem, prompt, 100)
		if err == nil && msg != "" {
			return msg
		}
		e.logger.WarnContext(ctx, "model accountability message failed, using rules", "error", err)
	}
	return fallbackAccountability(s.completed, s.pending, now)
}

func fallbackAccountability(completed, pending int, now time.Time) string {
	messages := []string{
		fmt.Sprintf("Great job completing %d tasks! %d more to go - you've got this!", completed, pending),
		fmt.Sprintf("Time check! You've finished %d tasks. Which one will you tackle next?", completed),
		fmt.Sprintf("Progress update: %d/%d tasks done. Keep up the momentum!", completed, completed+pending),
		"Accountability moment: Focus on your next priority task. You're making solid progress!",
		fmt.Sprintf("You're %d tasks closer to your goals! Stay focused and keep pushing forward.", completed),
	}
	return messages[int(now.Unix()%int64(len(messages)))]
}

// Patterns describes category, completion-time and priority patterns.
func Patterns(tasks []model.Task) []string {
	var out []string

	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Category]++
	}
	if len(counts) > 0 {
		names := make([]string, 0, len(counts))
		for n := range counts {
			names = append(names, n)
		}
		sort.Slice(names, func(i, j int) bool {
			if counts[names[i]] != counts[names[j]] {
				return counts[names[i]] > counts[names[j]]
			}
			return names[i] < names[j]
		})
		out = append(out, fmt.Sprintf("Most frequent category: %s (%d tasks)", names[0], counts[names[0]]))
	}

	var sum, n, high int
	for _, t := range tasks {
		if t.Completed() && t.ActualTime != nil {
			sum += *t.ActualTime
			n++
		}
		if t.Priority == model.PriorityHigh {
			high++
		}
	}
	if n > 0 {
		out = append(out, fmt.Sprintf("Average completion time: %.1f minutes", float64(sum)/float64(n)))
	}
	if high > 0 {
		out = append(out, fmt.Sprintf("%.0f%% of tasks are high priority", float64(high)/float64(len(tasks))*100))
	}
	return out
}

func newInsight(msg string, typ model.InsightType, confidence float64, now time.Time) model.Insight {
	return model.Insight{
		ID:          uuid.NewString(),
		Message:     msg,
		InsightType: typ,
		Confidence:  confidence,
		CreatedAt:   now,
	}
}
