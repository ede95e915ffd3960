package model

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Status is free-form on the wire. Only StatusCompleted is significant:
// every other value counts as pending.
const (
	StatusPending   = "Pending"
	StatusCompleted = "Completed"
)

const (
	MinDescriptionLen = 3
	MaxDescriptionLen = 200
	MinEstimate       = 5
	MaxEstimate       = 480
)

// Categories offered by the task form. The field itself is free-form.
var Categories = []string{"work", "personal", "health", "learning", "finance", "social"}

type Task struct {
	ID            string     `json:"id"`
	Task          string     `json:"task"`
	Priority      Priority   `json:"priority"`
	EstimatedTime int        `json:"estimatedTime"`
	Category      string     `json:"category"`
	Status        string     `json:"status"`
	ActualTime    *int       `json:"actualTime,omitempty"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

func (t Task) Overdue(now time.Time) bool {
	return t.DueAt != nil && now.After(*t.DueAt) && !t.Completed()
}

// ToggledStatus returns the status a toggle would move the task to.
func (t Task) ToggledStatus() string {
	if t.Completed() {
		return StatusPending
	}
	return StatusCompleted
}

// Draft is the payload of a create command. The backend assigns the ID.
type Draft struct {
	Task          string     `json:"task"`
	Priority      Priority   `json:"priority"`
	EstimatedTime int        `json:"estimatedTime"`
	Category      string     `json:"category"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
}

// DraftFrom strips identity and bookkeeping fields from t.
func DraftFrom(t Task) Draft {
	return Draft{
		Task:          t.Task,
		Priority:      t.Priority,
		EstimatedTime: t.EstimatedTime,
		Category:      t.Category,
		DueAt:         t.DueAt,
	}
}

// Patch carries the fields of an update command; nil fields are left unchanged.
type Patch struct {
	Task          *string    `json:"task,omitempty"`
	Priority      *Priority  `json:"priority,omitempty"`
	EstimatedTime *int       `json:"estimatedTime,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Status        *string    `json:"status,omitempty"`
	ActualTime    *int       `json:"actualTime,omitempty"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
}

func (p Patch) IsEmpty() bool {
	return p.Task == nil && p.Priority == nil && p.EstimatedTime == nil &&
		p.Category == nil && p.Status == nil && p.ActualTime == nil && p.DueAt == nil
}

// Apply merges p into t and returns the result. Moving into the completed
// status stamps CompletedAt; leaving it clears CompletedAt.
func (p Patch) Apply(t Task, now time.Time) Task {
	if p.Task != nil {
		t.Task = strings.TrimSpace(*p.Task)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.EstimatedTime != nil {
		t.EstimatedTime = *p.EstimatedTime
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Status != nil {
		switch {
		case *p.Status == StatusCompleted && !t.Completed():
			t.CompletedAt = &now
		case *p.Status != StatusCompleted:
			t.CompletedAt = nil
		}
		t.Status = *p.Status
	}
	if p.ActualTime != nil {
		t.ActualTime = p.ActualTime
	}
	if p.DueAt != nil {
		t.DueAt = p.DueAt
	}
	t.UpdatedAt = &now
	return t
}

// StatusFilter selects tasks by completion.
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterPending   StatusFilter = "pending"
	FilterCompleted StatusFilter = "completed"
)

// Filter describes a derived view over a task list. Zero values match everything.
type Filter struct {
	Status   StatusFilter
	Priority Priority
	Category string
	Search   string
}

func (f Filter) Match(t Task) bool {
	switch f.Status {
	case FilterPending:
		if t.Completed() {
			return false
		}
	case FilterCompleted:
		if !t.Completed() {
			return false
		}
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Task), strings.ToLower(f.Search)) {
		return false
	}
	return true
}
