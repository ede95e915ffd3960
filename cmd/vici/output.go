package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/jaekwang-park/vici/internal/model"
)

var (
	bold      = color.New(color.Bold).SprintFunc()
	dim       = color.New(color.Faint).SprintFunc()
	cyan      = color.New(color.FgCyan).SprintFunc()
	green     = color.New(color.FgGreen).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	boldRed   = color.New(color.Bold, color.FgRed).SprintFunc()
	boldGreen = color.New(color.Bold, color.FgGreen).SprintFunc()
)

func priorityColor(p model.Priority) func(a ...interface{}) string {
	switch p {
	case model.PriorityHigh:
		return boldRed
	case model.PriorityMedium:
		return yellow
	default:
		return green
	}
}

func statusMark(t model.Task) string {
	if t.Completed() {
		return green("[x]")
	}
	return "[ ]"
}

// formatTask renders one line of the task list. pos is 1-based.
func formatTask(pos int, t model.Task, now time.Time) string {
	desc := t.Task
	if t.Completed() {
		desc = dim(desc)
	}
	line := fmt.Sprintf("%3d. %s %-6s %s %s %s",
		pos,
		statusMark(t),
		priorityColor(t.Priority)(string(t.Priority)),
		desc,
		dim(fmt.Sprintf("(%dm, %s)", t.EstimatedTime, t.Category)),
		dim(t.ID),
	)
	if t.DueAt != nil {
		due := "due " + t.DueAt.Local().Format("2006-01-02 15:04")
		if t.Overdue(now) {
			due = red("overdue " + t.DueAt.Local().Format("2006-01-02 15:04"))
		}
		line += " " + due
	}
	return line
}

func printTasks(w io.Writer, tasks []model.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, dim("No tasks."))
		return
	}
	for i, t := range tasks {
		fmt.Fprintln(w, formatTask(i+1, t, now))
	}
}

func printStats(w io.Writer, s model.Stats) {
	fmt.Fprintf(w, "%s\n", bold("Productivity"))
	fmt.Fprintf(w, "  Total:          %d\n", s.TotalTasks)
	fmt.Fprintf(w, "  Completed:      %s\n", green(s.CompletedTasks))
	fmt.Fprintf(w, "  Pending:        %d (%d min)\n", s.PendingTasks, s.PendingMinutes)
	fmt.Fprintf(w, "  High priority:  %s\n", boldRed(s.HighPriorityPending))
	if s.OverdueTasks > 0 {
		fmt.Fprintf(w, "  Overdue:        %s\n", red(s.OverdueTasks))
	} else {
		fmt.Fprintf(w, "  Overdue:        0\n")
	}
	fmt.Fprintf(w, "  Completion:     %.1f%%\n", s.CompletionRate)
	if s.AverageCompletionTime != nil {
		fmt.Fprintf(w, "  Avg actual:     %.0f min\n", *s.AverageCompletionTime)
	}
	if len(s.CommonCategories) > 0 {
		fmt.Fprintf(w, "  Top categories: %s\n", strings.Join(s.CommonCategories, ", "))
	}
}

func printInsights(w io.Writer, insights []model.Insight) {
	if len(insights) == 0 {
		fmt.Fprintln(w, dim("No insights yet."))
		return
	}
	for _, in := range insights {
		fmt.Fprintf(w, "%s %s %s\n", cyan("*"), in.Message, dim(fmt.Sprintf("[%s %.0f%%]", in.InsightType, in.Confidence*100)))
	}
}

func printNotifications(w io.Writer, ns []model.Notification) {
	if len(ns) == 0 {
		fmt.Fprintln(w, dim("No notifications."))
		return
	}
	for _, n := range ns {
		mark := yellow("*")
		if n.IsRead {
			mark = " "
		}
		fmt.Fprintf(w, "%s %s %s\n    %s\n", mark, bold(n.Title), dim(n.ID), n.Message)
	}
}

func printCommunications(w io.Writer, acts []model.CommunicationActivity) {
	if len(acts) == 0 {
		fmt.Fprintln(w, dim("No communication services configured."))
		return
	}
	for _, c := range acts {
		state := red("disconnected")
		if c.Connected {
			state = green("connected")
		}
		fmt.Fprintf(w, "%-10s %s  %d messages, %d unread, %d mentions",
			c.Service, state, c.MessageCount, c.UnreadCount, c.Mentions)
		if len(c.KeywordsDetected) > 0 {
			fmt.Fprintf(w, "  %s", yellow(strings.Join(c.KeywordsDetected, ", ")))
		}
		fmt.Fprintln(w)
	}
}

func printFieldErrors(w io.Writer, errs model.FieldErrors) {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "  %s: %s\n", bold(field), errs[field])
	}
}

// colorNotifier prints store notifications on one line each.
type colorNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newColorNotifier(w io.Writer) *colorNotifier {
	return &colorNotifier{w: w}
}

func (n *colorNotifier) print(prefix, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", prefix, msg)
}

func (n *colorNotifier) Success(msg string) { n.print(boldGreen("✓"), msg) }
func (n *colorNotifier) Error(msg string)   { n.print(boldRed("✗"), msg) }
func (n *colorNotifier) Info(msg string)    { n.print(cyan("i"), msg) }
