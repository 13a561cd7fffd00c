package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/shared-friday/app"
	"github.com/danielhkuo/shared-friday/auth"
	"github.com/danielhkuo/shared-friday/cliparse"
	"github.com/danielhkuo/shared-friday/middleware"
	"github.com/danielhkuo/shared-friday/router"
)

// rootOptions holds the flags shared by every command
type rootOptions struct {
	envFile string
	raw     cliparse.Config
	cfg     cliparse.Config
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "shared-friday",
		Short:         "Shared Friday potluck coordination server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cliparse.LoadEnvFile(opts.envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", opts.envFile, err)
			}
			cfg, err := cliparse.Resolve(opts.raw)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts.cfg)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cliparse.BindFlags(cmd.PersistentFlags(), &opts.raw)

	// Add subcommands
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCreateUserCommand(opts))
	cmd.AddCommand(newGrantAdminCommand(opts))
	cmd.AddCommand(newCleanupGhostsCommand(opts))
	cmd.AddCommand(newReconcileCommand(opts))

	return cmd
}

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts.cfg)
		},
	}
}

func runServe(cfg cliparse.Config) error {
	a, err := app.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer a.Close()

	// Create router
	mux := router.NewRouter(a)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "database", cfg.DatabaseType)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
		return err
	}
	slog.Info("Server closed")
	return nil
}

// withApp opens the App for a one-shot command
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Open(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func newCreateUserCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create-user [display name]",
		Short: "Register a user and print its id and token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				user, err := a.Users.CreateUser(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\ntoken:   %s\n",
					user.ID, auth.SignToken(user.ID, a.Config.SessionSalt))
				return nil
			})
		},
	}
}

func newGrantAdminCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin <user id> [display name]",
		Short: "Give an existing user organizer rights",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 2 {
				name = args[1]
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				if err := a.Users.GrantAdmin(ctx, args[0], name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
				return nil
			})
		},
	}
}

func newCleanupGhostsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup-ghosts",
		Short: "Remove claims held by users that no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				rep, err := a.Claims.CleanupGhostAssignments(ctx, a.Users)
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n",
					english.Plural(len(rep.RemovedIDs), "ghost assignment", ""))
				for _, id := range rep.RemovedIDs {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", id)
				}
				return err
			})
		},
	}
}

func newReconcileCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair drift between item pointers and claims",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app.App) error {
				rep, err := a.Claims.ReconcilePointers(ctx)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "cleared %s, removed %s\n",
					english.Plural(len(rep.ClearedPointers), "stale pointer", ""),
					english.Plural(len(rep.RemovedOrphans), "orphaned claim", ""))
				for _, id := range rep.ClearedPointers {
					fmt.Fprintf(out, "  item %s\n", id)
				}
				for _, id := range rep.RemovedOrphans {
					fmt.Fprintf(out, "  assignment %s\n", id)
				}
				return err
			})
		},
	}
}
