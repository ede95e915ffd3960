package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jaekwang-park/vici/internal/form"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/reorder"
	"github.com/jaekwang-park/vici/internal/shortcut"
	"github.com/jaekwang-park/vici/internal/store"
)

func uiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if !a.verbose {
				a.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
			requests := make(chan confirmRequest)
			status := &statusLine{}
			st := a.storeWith(status, teaConfirmer{requests: requests})

			m := newUIModel(ctx, st, status, requests)
			p := tea.NewProgram(m,
				tea.WithContext(ctx),
				tea.WithInput(a.in),
				tea.WithOutput(a.out),
			)
			_, err := p.Run()
			if err != nil && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}

type uiMode int

const (
	modeBrowse uiMode = iota
	modeAdd
	modeConfirm
)

type confirmRequest struct {
	prompt string
	reply  chan bool
}

// teaConfirmer hands the question to the program and blocks until the
// model answers it.
type teaConfirmer struct {
	requests chan<- confirmRequest
}

func (c teaConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	req := confirmRequest{prompt: prompt, reply: make(chan bool, 1)}
	select {
	case c.requests <- req:
	case <-ctx.Done():
		return false, ctx.Err()
	}
	select {
	case ok := <-req.reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// statusLine is the store's Notifier inside the ui: it keeps the last message.
type statusLine struct {
	mu      sync.Mutex
	text    string
	isError bool
}

func (s *statusLine) set(text string, isError bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text, s.isError = text, isError
}

func (s *statusLine) Success(msg string) { s.set(msg, false) }
func (s *statusLine) Error(msg string)   { s.set(msg, true) }
func (s *statusLine) Info(msg string)    { s.set(msg, false) }

func (s *statusLine) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isError {
		return "error: " + s.text
	}
	return s.text
}

type (
	confirmRequestMsg confirmRequest
	opDoneMsg         struct {
		op  string
		err error
	}
	watchEndedMsg struct{ err error }
	tickMsg       time.Time
)

type uiModel struct {
	ctx      context.Context
	store    *store.Store
	status   *statusLine
	keys     *shortcut.Dispatcher
	requests <-chan confirmRequest

	mode     uiMode
	cursor   int
	input    []rune
	form     *form.Form
	pending  *confirmRequest
	drag     reorder.Drag
	quitting bool

	// next is the command queued by the binding that just fired.
	next tea.Cmd
}

func newUIModel(ctx context.Context, st *store.Store, status *statusLine, requests <-chan confirmRequest) *uiModel {
	m := &uiModel{
		ctx:      ctx,
		store:    st,
		status:   status,
		keys:     shortcut.NewDispatcher(),
		requests: requests,
	}
	m.keys.Install(shortcut.TaskBindings(m.startAdd, m.deleteSelected, m.toggleSelected, m.cancel)...)
	m.keys.Install(
		shortcut.Binding{Chord: shortcut.MustParse("up"), Action: func() { m.moveCursor(-1) }, Description: "Previous task"},
		shortcut.Binding{Chord: shortcut.MustParse("k"), Action: func() { m.moveCursor(-1) }, Description: "Previous task"},
		shortcut.Binding{Chord: shortcut.MustParse("down"), Action: func() { m.moveCursor(1) }, Description: "Next task"},
		shortcut.Binding{Chord: shortcut.MustParse("j"), Action: func() { m.moveCursor(1) }, Description: "Next task"},
		shortcut.Binding{Chord: shortcut.MustParse("shift+up"), Action: func() { m.moveTask(-1) }, Description: "Move task up"},
		shortcut.Binding{Chord: shortcut.MustParse("shift+down"), Action: func() { m.moveTask(1) }, Description: "Move task down"},
		shortcut.Binding{Chord: shortcut.MustParse("m"), Action: m.pickOrDrop, Description: "Pick up or drop the selected task"},
		shortcut.Binding{Chord: shortcut.MustParse("ctrl+s"), Action: m.saveOrder, Description: "Save task order"},
		shortcut.Binding{Chord: shortcut.MustParse("r"), Action: m.refresh, Description: "Reload"},
		shortcut.Binding{Chord: shortcut.MustParse("c"), Action: m.checkIn, Description: "Accountability check-in"},
		shortcut.Binding{Chord: shortcut.MustParse("q"), Action: m.quit, Description: "Quit"},
		shortcut.Binding{Chord: shortcut.MustParse("ctrl+c"), Action: m.quit, Description: "Quit"},
	)
	return m
}

func (m *uiModel) Init() tea.Cmd {
	return tea.Batch(
		m.run("refresh", m.store.Refresh),
		m.waitForConfirm(),
		m.watch(),
		tick(),
	)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// run executes fn off the update loop and reports the result.
func (m *uiModel) run(op string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *uiModel) waitForConfirm() tea.Cmd {
	ctx, requests := m.ctx, m.requests
	return func() tea.Msg {
		select {
		case req := <-requests:
			return confirmRequestMsg(req)
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *uiModel) watch() tea.Cmd {
	ctx, st := m.ctx, m.store
	return func() tea.Msg {
		return watchEndedMsg{err: st.Watch(ctx)}
	}
}

func (m *uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case confirmRequestMsg:
		req := confirmRequest(msg)
		m.pending = &req
		m.mode = modeConfirm
		return m, nil
	case opDoneMsg:
		m.finish(msg)
		return m, nil
	case watchEndedMsg:
		if msg.err != nil && m.ctx.Err() == nil {
			m.status.Error("Live updates unavailable")
		}
		return m, nil
	case tickMsg:
		m.clampCursor()
		return m, tick()
	}
	return m, nil
}

func (m *uiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeConfirm:
		return m, m.answer(msg.String() == "y" || msg.String() == "Y")
	case modeAdd:
		return m, m.handleInput(msg)
	}

	if m.keys.Dispatch(shortcut.FromKeyMsg(msg)) {
		next := m.next
		m.next = nil
		return m, next
	}
	return m, nil
}

func (m *uiModel) answer(ok bool) tea.Cmd {
	if m.pending != nil {
		m.pending.reply <- ok
		m.pending = nil
	}
	m.mode = modeBrowse
	return m.waitForConfirm()
}

func (m *uiModel) handleInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.form.Cancel()
		m.mode = modeBrowse
		m.input = nil
		return nil
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyTab:
		m.form.SetPriority(nextPriority(m.form.Draft().Priority))
		return nil
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return nil
	case tea.KeySpace:
		m.input = append(m.input, ' ')
		return nil
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
		return nil
	}
	return nil
}

func (m *uiModel) submit() tea.Cmd {
	f, st := m.form, m.store
	f.SetTask(string(m.input))
	if errs := f.Validate(); errs != nil {
		m.status.Error(errs.Error())
		return nil
	}
	m.mode = modeBrowse
	m.input = nil
	return m.run("create", func(ctx context.Context) error {
		return f.Submit(ctx, func(ctx context.Context, d model.Draft) error {
			_, err := st.Create(ctx, d)
			return err
		})
	})
}

func nextPriority(p model.Priority) model.Priority {
	switch p {
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	default:
		return model.PriorityLow
	}
}

func (m *uiModel) finish(msg opDoneMsg) {
	var verr *form.ValidationError
	switch {
	case errors.Is(msg.err, store.ErrDeleteNotConfirmed):
		m.status.Info("Delete cancelled")
	case errors.As(msg.err, &verr):
		m.status.Error(verr.Fields.Error())
	case msg.err == nil && msg.op == "persist_order":
		m.status.Success("Order saved")
	}
	m.clampCursor()
}

func (m *uiModel) selected() (model.Task, bool) {
	tasks := m.store.Tasks()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return model.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m *uiModel) clampCursor() {
	n := len(m.store.Tasks())
	switch {
	case n == 0:
		m.cursor = 0
		m.store.Select("")
		return
	case m.cursor >= n:
		m.cursor = n - 1
	case m.cursor < 0:
		m.cursor = 0
	}
	if t, ok := m.selected(); ok {
		m.store.Select(t.ID)
	}
}

func (m *uiModel) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *uiModel) moveTask(delta int) {
	to := m.cursor + delta
	if to < 0 || to >= len(m.store.Tasks()) {
		return
	}
	if err := m.store.Reorder(m.cursor, to); err != nil {
		m.status.Error(err.Error())
		return
	}
	m.cursor = to
	m.clampCursor()
}

// pickOrDrop starts dragging the task under the cursor, or drops the one
// being dragged at the cursor.
func (m *uiModel) pickOrDrop() {
	if _, dragging := m.drag.Dragging(); !dragging {
		if t, ok := m.selected(); ok {
			m.drag.Start(t.ID, m.cursor)
		}
		return
	}
	tasks := m.store.Tasks()
	if !m.drag.Locate(taskIDs(tasks)) {
		m.status.Error("The task being moved is no longer in the list")
		return
	}
	moved, ok, err := reorder.Drop(&m.drag, tasks, m.cursor)
	if err != nil {
		m.status.Error(err.Error())
		return
	}
	if !ok {
		return
	}
	if err := m.store.SetOrder(taskIDs(moved)); err != nil {
		m.status.Error(err.Error())
	}
	m.clampCursor()
}

func (m *uiModel) startAdd() {
	m.mode = modeAdd
	m.form = form.New()
	m.input = nil
}

func (m *uiModel) deleteSelected() {
	t, ok := m.selected()
	if !ok {
		return
	}
	m.next = m.run("delete", func(ctx context.Context) error { return m.store.Delete(ctx, t.ID) })
}

func (m *uiModel) toggleSelected() {
	t, ok := m.selected()
	if !ok {
		return
	}
	m.next = m.run("toggle", func(ctx context.Context) error {
		_, err := m.store.ToggleStatus(ctx, t)
		return err
	})
}

func (m *uiModel) cancel() {
	m.drag.Cancel()
	m.status.set("", false)
}

func (m *uiModel) saveOrder() {
	m.next = m.run("persist_order", m.store.PersistOrder)
}

func (m *uiModel) refresh() {
	m.next = m.run("refresh", m.store.Refresh)
}

func (m *uiModel) checkIn() {
	m.next = m.run("accountability_check", func(ctx context.Context) error {
		_, err := m.store.TriggerAccountabilityCheck(ctx)
		return err
	})
}

func (m *uiModel) quit() {
	m.quitting = true
	m.next = tea.Quit
}

func (m *uiModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	tasks := m.store.Tasks()
	stats := m.store.LocalStats()
	fmt.Fprintf(&b, "vici: %d tasks, %d pending, %d completed", stats.TotalTasks, stats.PendingTasks, stats.CompletedTasks)
	if m.store.OrderDirty() {
		b.WriteString(" (order not saved)")
	}
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString("  No tasks. Press ctrl+n to add one.\n")
	}
	now := time.Now()
	dragged, dragging := m.drag.Dragging()
	for i, t := range tasks {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := cursor + plainTask(t, now)
		if dragging && t.ID == dragged.ID {
			line += " (moving)"
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeAdd:
		fmt.Fprintf(&b, "New task [%s, tab to change]: %s_\n", m.form.Draft().Priority, string(m.input))
	case modeConfirm:
		fmt.Fprintf(&b, "%s (y/n)\n", m.pending.prompt)
	}

	if s := m.status.String(); s != "" {
		b.WriteString(s + "\n")
	}
	b.WriteString("ctrl+n new  space toggle  del delete  shift+up/down or m move  ctrl+s save order  c check-in  q quit\n")
	return b.String()
}

func plainTask(t model.Task, now time.Time) string {
	mark := "[ ]"
	if t.Completed() {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %-6s %s (%dm, %s)", mark, t.Priority, t.Task, t.EstimatedTime, t.Category)
	if t.Overdue(now) {
		line += " OVERDUE"
	}
	return line
}
