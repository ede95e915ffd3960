package store

import (
	"context"
	"fmt"

	"github.com/jaekwang-park/vici/internal/form"
	"github.com/jaekwang-park/vici/internal/model"
)

// ItemResult is the outcome of one task in an import batch.
type ItemResult struct {
	Index   int
	Task    model.Task
	Created model.Task
	Err     error
}

func (r ItemResult) OK() bool { return r.Err == nil }

// BatchResult reports every item of an import, in input order.
type BatchResult struct {
	Items []ItemResult
}

func (b BatchResult) Succeeded() int {
	n := 0
	for _, it := range b.Items {
		if it.OK() {
			n++
		}
	}
	return n
}

func (b BatchResult) Failed() []ItemResult {
	var out []ItemResult
	for _, it := range b.Items {
		if !it.OK() {
			out = append(out, it)
		}
	}
	return out
}

// Remaining returns the input tasks that were not created, so a caller can
// retry just those.
func (b BatchResult) Remaining() []model.Task {
	var out []model.Task
	for _, it := range b.Items {
		if !it.OK() {
			out = append(out, it.Task)
		}
	}
	return out
}

// ImportBatch creates tasks one at a time. The batch is not atomic: a failed
// item does not undo earlier ones. Cancelling ctx stops the batch and marks
// the unprocessed items with the context error.
func (s *Store) ImportBatch(ctx context.Context, tasks []model.Task) (BatchResult, error) {
	res := BatchResult{Items: make([]ItemResult, len(tasks))}

	for i, t := range tasks {
		res.Items[i] = ItemResult{Index: i, Task: t}
		if err := ctx.Err(); err != nil {
			res.Items[i].Err = err
			continue
		}

		d := model.DraftFrom(t)
		if errs := model.ValidateDraft(d); errs != nil {
			res.Items[i].Err = &form.ValidationError{Fields: errs}
			continue
		}

		created, err := s.backend.CreateTask(ctx, d)
		s.record("create", err)
		if err != nil {
			s.logger.ErrorContext(ctx, "backend call failed", "op", "import", "index", i, "error", err)
			res.Items[i].Err = err
			continue
		}
		if p := restorePatch(t); !p.IsEmpty() {
			updated, err := s.backend.UpdateTask(ctx, created.ID, p)
			s.record("update", err)
			if err != nil {
				s.logger.WarnContext(ctx, "restoring imported fields failed", "id", created.ID, "error", err)
			} else {
				created = updated
			}
		}
		res.Items[i].Created = created
	}

	ok := res.Succeeded()
	switch {
	case ok == len(tasks):
		s.notifier.Success(fmt.Sprintf("Successfully imported %d tasks!", ok))
	case ok == 0:
		s.notifier.Error("Failed to import tasks")
	default:
		s.notifier.Error(fmt.Sprintf("Imported %d of %d tasks", ok, len(tasks)))
	}

	if ok > 0 {
		_ = s.Refresh(context.WithoutCancel(ctx))
	}
	return res, ctx.Err()
}

// restorePatch carries the fields a create cannot set: any status other than
// the default and the recorded actual time.
func restorePatch(t model.Task) model.Patch {
	var p model.Patch
	if t.Status != "" && t.Status != model.StatusPending {
		status := t.Status
		p.Status = &status
	}
	if t.ActualTime != nil {
		actual := *t.ActualTime
		p.ActualTime = &actual
	}
	return p
}
