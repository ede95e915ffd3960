package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/vici/internal/form"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/reorder"
	"github.com/jaekwang-park/vici/internal/store"
)

// resolveTask accepts a task ID or a 1-based position in the list.
func resolveTask(st *store.Store, arg string) (model.Task, error) {
	if t, ok := st.Task(arg); ok {
		return t, nil
	}
	if n, err := strconv.Atoi(arg); err == nil {
		tasks := st.Tasks()
		if n >= 1 && n <= len(tasks) {
			return tasks[n-1], nil
		}
	}
	return model.Task{}, fmt.Errorf("no task %q", arg)
}

func parseDue(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid due date %q: use YYYY-MM-DD, \"YYYY-MM-DD HH:MM\" or RFC 3339", s)
}

// reportValidation prints field errors and reports whether err was one.
func (a *app) reportValidation(err error) bool {
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	fmt.Fprintln(a.errOut, boldRed("Task not saved:"))
	printFieldErrors(a.errOut, verr.Fields)
	return true
}

func listCmd(a *app) *cobra.Command {
	var status, priority, category, search string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks in display order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := model.Filter{Category: category, Search: search}
			switch model.StatusFilter(status) {
			case model.FilterAll, model.FilterPending, model.FilterCompleted:
				f.Status = model.StatusFilter(status)
			default:
				return fmt.Errorf("invalid status %q: must be all, pending or completed", status)
			}
			if priority != "" {
				p, err := priorityFlag(priority)
				if err != nil {
					return err
				}
				f.Priority = p
			}

			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			printTasks(a.out, st.Filter(f), time.Now())
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", string(model.FilterAll), "Filter by status (all, pending, completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Case-insensitive text search")
	return cmd
}

// taskFlags are the editable fields shared by add and edit.
type taskFlags struct {
	priority string
	estimate int
	category string
	due      string
}

func (tf *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&tf.priority, "priority", "p", string(form.DefaultPriority), "Priority (low, medium, high)")
	cmd.Flags().IntVarP(&tf.estimate, "estimate", "e", form.DefaultEstimatedTime, "Estimated minutes (5-480)")
	cmd.Flags().StringVarP(&tf.category, "category", "c", form.DefaultCategory, "Category")
	cmd.Flags().StringVar(&tf.due, "due", "", "Due date")
}

// apply copies the flags the user set onto f.
func (tf *taskFlags) apply(cmd *cobra.Command, f *form.Form) error {
	changed := cmd.Flags().Changed
	if changed("priority") {
		p, err := priorityFlag(tf.priority)
		if err != nil {
			return err
		}
		f.SetPriority(p)
	}
	if changed("estimate") {
		f.SetEstimatedTime(tf.estimate)
	}
	if changed("category") {
		f.SetCategory(tf.category)
	}
	if changed("due") {
		due, err := parseDue(tf.due)
		if err != nil {
			return err
		}
		f.SetDueAt(due)
	}
	return nil
}

func addCmd(a *app) *cobra.Command {
	var tf taskFlags

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form.New()
			f.SetTask(strings.Join(args, " "))
			if err := tf.apply(cmd, f); err != nil {
				return err
			}

			st := a.newStore()
			var created model.Task
			err := f.Submit(cmd.Context(), func(ctx context.Context, d model.Draft) error {
				t, err := st.Create(ctx, d)
				created = t
				return err
			})
			if a.reportValidation(err) {
				return errValidation
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatTask(len(st.Tasks()), created, time.Now()))
			return nil
		},
	}
	tf.register(cmd)
	return cmd
}

func editCmd(a *app) *cobra.Command {
	var (
		tf   taskFlags
		desc string
	)

	cmd := &cobra.Command{
		Use:   "edit <id|position>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}

			f := form.Edit(t)
			if cmd.Flags().Changed("task") {
				f.SetTask(desc)
			}
			if err := tf.apply(cmd, f); err != nil {
				return err
			}
			if errs := f.Validate(); errs != nil {
				a.reportValidation(&form.ValidationError{Fields: errs})
				return errValidation
			}
			patch := f.Patch()
			if patch.IsEmpty() {
				fmt.Fprintln(a.errOut, dim("Nothing to change."))
				return nil
			}

			updated, err := st.Update(cmd.Context(), t.ID, patch)
			if a.reportValidation(err) {
				return errValidation
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatTask(position(st, updated.ID), updated, time.Now()))
			return nil
		},
	}
	tf.register(cmd)
	cmd.Flags().StringVarP(&desc, "task", "t", "", "New description")
	return cmd
}

func toggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id|position>",
		Short: "Mark a task completed, or pending again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			updated, err := st.ToggleStatus(cmd.Context(), t)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, formatTask(position(st, updated.ID), updated, time.Now()))
			return nil
		},
	}
}

func rmCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id|position>",
		Aliases: []string{"delete"},
		Short:   "Delete a task after confirmation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes {
				a.confirmer = yesConfirmer
			}
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			t, err := resolveTask(st, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.errOut, formatTask(position(st, t.ID), t, time.Now()))

			err = st.Delete(cmd.Context(), t.ID)
			if errors.Is(err, store.ErrDeleteNotConfirmed) {
				fmt.Fprintln(a.errOut, dim("Cancelled."))
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}

func moveCmd(a *app) *cobra.Command {
	var (
		persist  bool
		status   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "move <from> <to>",
		Short: "Move a task to another position (1-based)",
		Long: `Move a task to another position. With --status or --category the positions
count within the filtered list, and the task lands where the task at <to> is now.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[0])
			}
			to, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[1])
			}

			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}

			from, to = from-1, to-1
			if status != "" || category != "" {
				visible := st.Filter(model.Filter{Status: model.StatusFilter(status), Category: category})
				from, to, err = reorder.Canonical(taskIDs(visible), taskIDs(st.Tasks()), from, to)
				if err != nil {
					return fmt.Errorf("moving task: %w", err)
				}
			}
			if err := st.Reorder(from, to); err != nil {
				return fmt.Errorf("moving task: %w", err)
			}
			if persist {
				if err := st.PersistOrder(cmd.Context()); err != nil {
					return err
				}
			}
			printTasks(a.out, st.Tasks(), time.Now())
			if !persist {
				fmt.Fprintln(a.errOut, dim("Preview only; rerun with --persist to save the order."))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "Save the new order to the server")
	cmd.Flags().StringVar(&status, "status", "", "Count positions among tasks with this status (pending, completed)")
	cmd.Flags().StringVar(&category, "category", "", "Count positions among tasks in this category")
	return cmd
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

// position is the 1-based index of id in the list, or 0.
func position(st *store.Store, id string) int {
	for i, t := range st.Tasks() {
		if t.ID == id {
			return i + 1
		}
	}
	return 0
}

var errValidation = errors.New("validation failed")
