package model

import (
	"sort"
	"time"
)

type Stats struct {
	TotalTasks            int      `json:"total_tasks"`
	CompletedTasks        int      `json:"completed_tasks"`
	PendingTasks          int      `json:"pending_tasks"`
	OverdueTasks          int      `json:"overdue_tasks"`
	HighPriorityPending   int      `json:"high_priority_pending"`
	CompletionRate        float64  `json:"completion_rate"`
	AverageCompletionTime *float64 `json:"average_completion_time,omitempty"`
	PendingMinutes        int      `json:"pending_minutes"`
	CommonCategories      []string `json:"common_categories"`
}

// Snapshot is a consistent view of the task list and the statistics derived from it.
type Snapshot struct {
	Tasks []Task `json:"tasks"`
	Stats Stats  `json:"stats"`
}

// ComputeStats derives statistics from a task list.
func ComputeStats(tasks []Task, now time.Time) Stats {
	s := Stats{TotalTasks: len(tasks), CommonCategories: []string{}}

	var actualSum, actualCount int
	categories := make(map[string]int)
	for _, t := range tasks {
		if t.Category != "" {
			categories[t.Category]++
		}
		if t.Completed() {
			s.CompletedTasks++
			if t.ActualTime != nil {
				actualSum += *t.ActualTime
				actualCount++
			}
			continue
		}
		s.PendingTasks++
		s.PendingMinutes += t.EstimatedTime
		if t.Priority == PriorityHigh {
			s.HighPriorityPending++
		}
		if t.Overdue(now) {
			s.OverdueTasks++
		}
	}

	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}
	if actualCount > 0 {
		avg := float64(actualSum) / float64(actualCount)
		s.AverageCompletionTime = &avg
	}
	s.CommonCategories = topCategories(categories, 3)
	return s
}

func topCategories(counts map[string]int, n int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}
