// Package form holds the editable state of the task form: field values,
// per-field validation errors and the submit/cancel lifecycle.
package form

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jaekwang-park/vici/internal/model"
)

const (
	DefaultPriority      = model.PriorityMedium
	DefaultEstimatedTime = 30
	DefaultCategory      = "work"
)

// ErrSubmitting is returned when Submit is called while a submission is
// still in flight.
var ErrSubmitting = errors.New("form: submit already in progress")

// ValidationError carries the per-field messages of a rejected submission.
type ValidationError struct {
	Fields model.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

// Submitter receives a validated draft.
type Submitter func(ctx context.Context, d model.Draft) error

type values struct {
	task          string
	priority      model.Priority
	estimatedTime int
	category      string
	dueAt         *time.Time
}

func defaults() values {
	return values{
		priority:      DefaultPriority,
		estimatedTime: DefaultEstimatedTime,
		category:      DefaultCategory,
	}
}

type Form struct {
	mu         sync.Mutex
	initial    values
	current    values
	editing    *model.Task
	errs       model.FieldErrors
	submitting bool
}

// New returns a form in create mode with default values.
func New() *Form {
	return &Form{initial: defaults(), current: defaults()}
}

// Edit returns a form in edit mode pre-populated from t.
func Edit(t model.Task) *Form {
	v := defaults()
	v.task = t.Task
	if t.Priority != "" {
		v.priority = t.Priority
	}
	if t.EstimatedTime != 0 {
		v.estimatedTime = t.EstimatedTime
	}
	if t.Category != "" {
		v.category = t.Category
	}
	v.dueAt = t.DueAt

	orig := t
	return &Form{initial: v, current: v, editing: &orig}
}

func (f *Form) Editing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing != nil
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// SetTask updates the description. Each setter clears the error recorded
// for its field.
func (f *Form) SetTask(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.task = s
	delete(f.errs, model.FieldTask)
}

func (f *Form) SetPriority(p model.Priority) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.priority = p
	delete(f.errs, model.FieldPriority)
}

func (f *Form) SetEstimatedTime(minutes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.estimatedTime = minutes
	delete(f.errs, model.FieldEstimatedTime)
}

func (f *Form) SetCategory(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.category = c
	delete(f.errs, model.FieldCategory)
}

func (f *Form) SetDueAt(t *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current.dueAt = t
}

// Errors returns a copy of the errors from the last Validate or Submit.
func (f *Form) Errors() model.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.errs)
}

func copyErrors(errs model.FieldErrors) model.FieldErrors {
	if len(errs) == 0 {
		return nil
	}
	out := make(model.FieldErrors, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}

// Draft returns the current values with the description trimmed.
func (f *Form) Draft() model.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draftLocked()
}

func (f *Form) draftLocked() model.Draft {
	return model.Draft{
		Task:          strings.TrimSpace(f.current.task),
		Priority:      f.current.priority,
		EstimatedTime: f.current.estimatedTime,
		Category:      f.current.category,
		DueAt:         f.current.dueAt,
	}
}

// Validate records and returns the current field errors, nil when valid.
func (f *Form) Validate() model.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = model.ValidateDraft(f.draftLocked())
	return copyErrors(f.errs)
}

// Submit validates and hands the draft to submit. Invalid input returns a
// *ValidationError without calling submit. A failed submit keeps the
// values; a successful one clears errors and, in create mode, resets the
// form to its defaults.
func (f *Form) Submit(ctx context.Context, submit Submitter) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitting
	}
	d := f.draftLocked()
	if errs := model.ValidateDraft(d); errs != nil {
		f.errs = errs
		f.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	f.submitting = true
	f.mu.Unlock()

	err := submit(ctx, d)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		return err
	}
	f.errs = nil
	if f.editing == nil {
		f.current = defaults()
	}
	return nil
}

// Cancel restores the initial values and clears errors.
func (f *Form) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.initial
	f.errs = nil
}

// Patch lists the fields that differ from the task being edited. In create
// mode every field is included.
func (f *Form) Patch() model.Patch {
	f.mu.Lock()
	defer f.mu.Unlock()

	d := f.draftLocked()
	var p model.Patch
	if f.editing == nil || d.Task != f.editing.Task {
		p.Task = &d.Task
	}
	if f.editing == nil || d.Priority != f.editing.Priority {
		p.Priority = &d.Priority
	}
	if f.editing == nil || d.EstimatedTime != f.editing.EstimatedTime {
		p.EstimatedTime = &d.EstimatedTime
	}
	if f.editing == nil || d.Category != f.editing.Category {
		p.Category = &d.Category
	}
	if d.DueAt != nil && (f.editing == nil || f.editing.DueAt == nil || !d.DueAt.Equal(*f.editing.DueAt)) {
		p.DueAt = d.DueAt
	}
	return p
}
