package transfer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/vici/internal/model"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func sequentialIDs() ImportOption {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("imported-%d", n)
	})
}

func TestExport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestExport_Indented(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, []model.Task{{ID: "1", Task: "Write", Priority: model.PriorityLow, EstimatedTime: 10, Category: "work", Status: "Pending"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\n  {\n    \"id\": \"1\",")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "vici-tasks-2025-03-14.json", FileName(fixedNow))
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportFile(dir, []model.Task{{ID: "1", Task: "Write", Priority: model.PriorityLow, EstimatedTime: 10}}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "vici-tasks-2025-03-14.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"task": "Write"`)
}

func TestImport_FiltersMalformed(t *testing.T) {
	input := `[
	  {"task": "One", "priority": "low", "estimatedTime": 10, "category": "work", "status": "Pending"},
	  {"task": "Two", "priority": "high", "estimatedTime": 20, "category": "health", "status": "Completed"},
	  {"task": "Three", "priority": "medium", "estimatedTime": 30.0, "category": "", "status": "Pending"},
	  {"task": "Bad priority", "priority": "urgent", "estimatedTime": 10, "category": "work", "status": "Pending"},
	  {"task": "String estimate", "priority": "low", "estimatedTime": "30", "category": "work", "status": "Pending"}
	]`

	res, err := ImportDetailed(strings.NewReader(input), WithClock(func() time.Time { return fixedNow }), sequentialIDs())
	require.NoError(t, err)
	require.Len(t, res.Tasks, 3)
	assert.Equal(t, 2, res.Dropped)

	for i, task := range res.Tasks {
		assert.Equal(t, fmt.Sprintf("imported-%d", i+1), task.ID)
		require.NotNil(t, task.CreatedAt)
		assert.True(t, fixedNow.Equal(*task.CreatedAt))
	}
	assert.Equal(t, []string{"One", "Two", "Three"}, []string{res.Tasks[0].Task, res.Tasks[1].Task, res.Tasks[2].Task})
}

func TestImport_DefaultIDsAreUnique(t *testing.T) {
	input := `[
	  {"id": "same", "task": "One", "priority": "low", "estimatedTime": 10, "category": "work", "status": "Pending"},
	  {"id": "same", "task": "Two", "priority": "low", "estimatedTime": 10, "category": "work", "status": "Pending"}
	]`
	tasks, err := Import(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
	assert.True(t, strings.HasPrefix(tasks[0].ID, "imported-"))
}

func TestImport_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"invalid json", `[{"task": `, ErrInvalidJSON},
		{"object root", `{"task": "One"}`, ErrNotArray},
		{"empty array", `[]`, ErrNoValidTasks},
		{"nothing valid", `[{"task": ""}, 5, "x"]`, ErrNoValidTasks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImport_CarriesOptionalFields(t *testing.T) {
	input := `[{"task": "One", "priority": "low", "estimatedTime": 10, "category": "work", "status": "Completed",
	  "actualTime": 12, "dueAt": "2025-03-20T10:00:00Z", "completedAt": "2025-03-13T10:00:00Z"}]`

	tasks, err := Import(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].ActualTime)
	assert.Equal(t, 12, *tasks[0].ActualTime)
	require.NotNil(t, tasks[0].DueAt)
	require.NotNil(t, tasks[0].CompletedAt)
}

func TestExportImport_RoundTrip(t *testing.T) {
	due := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	original := []model.Task{
		{ID: "a", Task: "Write report", Priority: model.PriorityHigh, EstimatedTime: 90, Category: "work", Status: "Pending", DueAt: &due},
		{ID: "b", Task: "Go running", Priority: model.PriorityLow, EstimatedTime: 45, Category: "health", Status: "Completed"},
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, original))

	got, err := Import(&buf, WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	require.Len(t, got, len(original))

	for i := range original {
		assert.Equal(t, original[i].Task, got[i].Task)
		assert.Equal(t, original[i].Priority, got[i].Priority)
		assert.Equal(t, original[i].EstimatedTime, got[i].EstimatedTime)
		assert.Equal(t, original[i].Category, got[i].Category)
		assert.Equal(t, original[i].Status, got[i].Status)
		assert.NotEqual(t, original[i].ID, got[i].ID)
	}
	require.NotNil(t, got[0].DueAt)
	assert.True(t, due.Equal(*got[0].DueAt))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Invalid file format. Expected an array of tasks.", Message(ErrNotArray))
	assert.Equal(t, "No valid tasks found in the file.", Message(fmt.Errorf("wrap: %w", ErrNoValidTasks)))
	assert.Equal(t, "Failed to import tasks. Please check the file format.", Message(ErrInvalidJSON))
}
