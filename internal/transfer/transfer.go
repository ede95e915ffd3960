// Package transfer writes task lists to JSON files and reads them back,
// dropping entries that do not look like tasks.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jaekwang-park/vici/internal/model"
)

var (
	ErrInvalidJSON  = errors.New("transfer: invalid json")
	ErrNotArray     = errors.New("transfer: root is not an array")
	ErrNoValidTasks = errors.New("transfer: no valid tasks")
)

// Message returns the text shown to the user for an import failure.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrNotArray):
		return "Invalid file format. Expected an array of tasks."
	case errors.Is(err, ErrNoValidTasks):
		return "No valid tasks found in the file."
	case errors.Is(err, ErrInvalidJSON):
		return "Failed to import tasks. Please check the file format."
	default:
		return "Failed to import tasks."
	}
}

const filePrefix = "vici-tasks-"

// Export writes tasks as an indented JSON array. An empty list is written as [].
func Export(w io.Writer, tasks []model.Task) error {
	if tasks == nil {
		tasks = []model.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tasks); err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	return nil
}

// FileName is the export file name for the given day.
func FileName(now time.Time) string {
	return filePrefix + now.Format("2006-01-02") + ".json"
}

// ExportFile writes tasks to dir/FileName(now) and returns the path.
func ExportFile(dir string, tasks []model.Task, now time.Time) (string, error) {
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	if err := Export(f, tasks); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	return path, nil
}

type importConfig struct {
	now   func() time.Time
	newID func() string
}

type ImportOption func(*importConfig)

func WithClock(now func() time.Time) ImportOption {
	return func(c *importConfig) { c.now = now }
}

func WithIDGenerator(fn func() string) ImportOption {
	return func(c *importConfig) { c.newID = fn }
}

func defaultID() string {
	return "imported-" + uuid.NewString()
}

// Result is the outcome of ImportDetailed.
type Result struct {
	Tasks   []model.Task
	Dropped int
}

// Import reads a JSON array of tasks. Every surviving entry gets a fresh ID
// and a creation time of now.
func Import(r io.Reader, opts ...ImportOption) ([]model.Task, error) {
	res, err := ImportDetailed(r, opts...)
	if err != nil {
		return nil, err
	}
	return res.Tasks, nil
}

func ImportDetailed(r io.Reader, opts ...ImportOption) (Result, error) {
	cfg := importConfig{now: time.Now, newID: defaultID}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("reading import: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return Result{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return Result{}, ErrNotArray
	}

	var res Result
	now := cfg.now()
	root.ForEach(func(_, v gjson.Result) bool {
		t, ok := parseTask(v)
		if !ok {
			res.Dropped++
			return true
		}
		t.ID = cfg.newID()
		created := now
		t.CreatedAt = &created
		res.Tasks = append(res.Tasks, t)
		return true
	})

	if len(res.Tasks) == 0 {
		return res, ErrNoValidTasks
	}
	return res, nil
}

func parseTask(v gjson.Result) (model.Task, bool) {
	if !v.IsObject() {
		return model.Task{}, false
	}

	desc := v.Get("task")
	prio := v.Get("priority")
	est := v.Get("estimatedTime")
	cat := v.Get("category")
	status := v.Get("status")

	if desc.Type != gjson.String || desc.Str == "" {
		return model.Task{}, false
	}
	if prio.Type != gjson.String || !model.Priority(prio.Str).IsValid() {
		return model.Task{}, false
	}
	if est.Type != gjson.Number {
		return model.Task{}, false
	}
	if cat.Type != gjson.String || status.Type != gjson.String {
		return model.Task{}, false
	}

	t := model.Task{
		Task:          desc.Str,
		Priority:      model.Priority(prio.Str),
		EstimatedTime: int(est.Int()),
		Category:      cat.Str,
		Status:        status.Str,
	}
	if at := v.Get("actualTime"); at.Type == gjson.Number {
		n := int(at.Int())
		t.ActualTime = &n
	}
	t.DueAt = parseTime(v.Get("dueAt"))
	t.CompletedAt = parseTime(v.Get("completedAt"))
	return t, true
}

func parseTime(v gjson.Result) *time.Time {
	if v.Type != gjson.String {
		return nil
	}
	t, err := time.Parse(time.RFC3339, v.Str)
	if err != nil {
		return nil
	}
	return &t
}
