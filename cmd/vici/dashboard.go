package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func statsCmd(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show productivity statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.loadStore(cmd.Context())
			if err != nil {
				return err
			}
			if local {
				printStats(a.out, st.LocalStats())
				return nil
			}
			printStats(a.out, st.Stats())
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Compute from the loaded list instead of the server snapshot")
	return cmd
}

func insightsCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Show AI productivity insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			insights, err := a.newStore().Insights(cmd.Context(), refresh)
			if err != nil {
				return err
			}
			printInsights(a.out, insights)
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Bypass the local cache")
	return cmd
}

func notificationsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notes"},
		Short:   "List recent notifications",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := a.newStore().Notifications(cmd.Context(), true)
			if err != nil {
				return err
			}
			printNotifications(a.out, ns)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "read <id>...",
		Short: "Mark notifications as read",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.newStore()
			var errs []error
			for _, id := range args {
				if err := st.MarkNotificationRead(cmd.Context(), id); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	})
	return cmd
}

func commsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comms",
		Short: "Show communication service activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := a.newStore().Communications(cmd.Context(), true)
			if err != nil {
				return err
			}
			printCommunications(a.out, acts)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "connect <service>",
		Short: "Start connecting a communication service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.client.ConnectCommunication(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("connecting %s: %w", args[0], err)
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	})
	return cmd
}

func checkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Ask for an accountability check-in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// The store's notifier prints the message.
			_, err := a.newStore().TriggerAccountabilityCheck(cmd.Context())
			return err
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	var poll time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow server events and reprint the list when it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.loadStore(ctx)
			if err != nil {
				return err
			}
			printTasks(a.out, st.Tasks(), time.Now())

			done := make(chan error, 1)
			go func() { done <- st.Watch(ctx) }()

			last := st.LastRefreshed()
			ticker := time.NewTicker(poll)
			defer ticker.Stop()
			for {
				select {
				case err := <-done:
					if ctx.Err() != nil {
						return nil
					}
					if err == nil {
						fmt.Fprintln(a.errOut, dim("Event stream closed."))
					}
					return err
				case <-ticker.C:
					if at := st.LastRefreshed(); at.After(last) {
						last = at
						fmt.Fprintln(a.out, dim("-- updated "+at.Format("15:04:05")+" --"))
						printTasks(a.out, st.Tasks(), time.Now())
					}
				}
			}
		},
	}
	cmd.Flags().DurationVar(&poll, "redraw", 500*time.Millisecond, "How often to check for a reloaded list")
	return cmd
}
