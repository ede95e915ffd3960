package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jaekwang-park/vici/internal/backend"
	"github.com/jaekwang-park/vici/internal/cache"
	"github.com/jaekwang-park/vici/internal/config"
	"github.com/jaekwang-park/vici/internal/model"
	"github.com/jaekwang-park/vici/internal/store"
)

// client is what the commands need from the API beyond the store's Backend.
type client interface {
	backend.Backend
	Login(ctx context.Context, email, password string) (backend.Tokens, error)
	ConnectCommunication(ctx context.Context, service string) (string, error)
}

type app struct {
	v       *viper.Viper
	cfgPath string
	verbose bool

	cfg    config.ClientConfig
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// newClient is replaced in tests.
	newClient func(cfg config.ClientConfig, logger *slog.Logger) client
	client    client
	confirmer store.Confirmer
}

func newApp() *app {
	return &app{
		v:      config.NewClientViper(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		newClient: func(cfg config.ClientConfig, logger *slog.Logger) client {
			return backend.NewHTTPClient(cfg.APIURL,
				backend.WithTimeout(cfg.Timeout),
				backend.WithToken(cfg.Token),
				backend.WithUserID(cfg.UserID),
				backend.WithLogger(logger),
			)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vici",
		Short:         "Manage your tasks from the terminal",
		Long:          `Vici keeps a prioritised task list in sync with the Vici API, with statistics, AI insights, communication status and accountability check-ins.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().String("api-url", "", "Vici API base URL")
	rootCmd.PersistentFlags().String("user-id", "", "User ID sent when auth is disabled")
	rootCmd.PersistentFlags().StringVar(&a.cfgPath, "config", config.DefaultClientPath(), "Config file path")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Debug logging to stderr")

	rootCmd.AddCommand(listCmd(a))
	rootCmd.AddCommand(addCmd(a))
	rootCmd.AddCommand(editCmd(a))
	rootCmd.AddCommand(toggleCmd(a))
	rootCmd.AddCommand(rmCmd(a))
	rootCmd.AddCommand(moveCmd(a))
	rootCmd.AddCommand(exportCmd(a))
	rootCmd.AddCommand(importCmd(a))
	rootCmd.AddCommand(statsCmd(a))
	rootCmd.AddCommand(insightsCmd(a))
	rootCmd.AddCommand(notificationsCmd(a))
	rootCmd.AddCommand(commsCmd(a))
	rootCmd.AddCommand(checkCmd(a))
	rootCmd.AddCommand(watchCmd(a))
	rootCmd.AddCommand(uiCmd(a))
	rootCmd.AddCommand(loginCmd(a))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\n\n%s", err, cmd.UsageString())
	})
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))

	flags := cmd.Flags()
	if f := flags.Lookup("api-url"); f != nil && f.Changed {
		if err := a.v.BindPFlag("api_url", f); err != nil {
			return err
		}
	}
	if f := flags.Lookup("user-id"); f != nil && f.Changed {
		if err := a.v.BindPFlag("user_id", f); err != nil {
			return err
		}
	}

	cfg, err := config.LoadClient(a.v, a.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	a.client = a.newClient(cfg, a.logger)
	a.logger.Debug("config loaded", "api_url", cfg.APIURL, "path", a.cfgPath)
	return nil
}

func (a *app) newStore() *store.Store {
	confirmer := a.confirmer
	if confirmer == nil {
		confirmer = newPromptConfirmer(a.in, a.errOut)
	}
	return a.storeWith(newColorNotifier(a.errOut), confirmer)
}

func (a *app) storeWith(n store.Notifier, c store.Confirmer) *store.Store {
	return store.New(a.client,
		store.WithNotifier(n),
		store.WithConfirmer(c),
		store.WithLogger(a.logger),
		store.WithCache(cache.New(
			cache.WithCapacity(a.cfg.CacheSize),
			cache.WithDefaultTTL(a.cfg.CacheTTL),
		)),
	)
}

// loadStore returns a store holding the current task list.
func (a *app) loadStore(ctx context.Context) (*store.Store, error) {
	st := a.newStore()
	if err := st.Refresh(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func priorityFlag(s string) (model.Priority, error) {
	p := model.Priority(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid priority %q: must be low, medium or high", s)
	}
	return p, nil
}
