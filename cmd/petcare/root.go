package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/petcare/internal/config"
	"github.com/dukerupert/petcare/internal/logging"
	"github.com/dukerupert/petcare/internal/push"
	"github.com/dukerupert/petcare/internal/server"
)

type options struct {
	configPath string
	port       string
	dbPath     string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "petcare",
		Short:         "Pet care record keeper",
		Long:          "petcare keeps health, expense and reminder records for your pets and delivers reminder notifications.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.port, "port", "", "HTTP port (overrides config)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	root.AddCommand(
		newServeCmd(opts),
		newReconcileCmd(opts),
		newStatsCmd(opts),
		newRollCmd(opts),
		newKeygenCmd(),
	)
	return root
}

// load reads config and applies flags that were set explicitly.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("db") {
		cfg.DBPath = o.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	o.cfg = cfg
	o.logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return nil
}

func (o *options) open(ctx context.Context) (*server.Server, error) {
	return server.New(ctx, o.cfg, o.logger)
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and notification dispatcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer srv.Close()
			srv.Start(ctx)

			httpServer := &http.Server{
				Addr:         ":" + opts.cfg.Port,
				Handler:      srv.Router(),
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 10 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				opts.logger.Info("petcare listening", "addr", "http://localhost:"+opts.cfg.Port)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
			case <-ctx.Done():
			}

			opts.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
}

func newReconcileCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Remove records whose pet no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer srv.Close()

			rep, err := srv.Service().Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, rep)
		},
	}
}

func newStatsCmd(opts *options) *cobra.Command {
	var petID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print expense and vaccine statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer srv.Close()

			if petID != "" {
				st, err := srv.Stats().PerPet(cmd.Context(), petID)
				if err != nil {
					return err
				}
				return printJSON(cmd, st)
			}
			st, err := srv.Stats().Overall(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, st)
		},
	}
	cmd.Flags().StringVar(&petID, "pet", "", "limit to one pet id")
	return cmd
}

func newRollCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "roll",
		Short: "Record expenses for recurring expenses that have come due",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer srv.Close()

			n, err := srv.Service().RollRecurringExpenses(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d expenses\n", n)
			return nil
		},
	}
}

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a VAPID key pair for web push",
		// Key generation needs no config or storage.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, priv, err := push.GenerateVAPIDKeys()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PETCARE_PUSH_VAPID_PUBLIC_KEY=%s\n", pub)
			fmt.Fprintf(out, "PETCARE_PUSH_VAPID_PRIVATE_KEY=%s\n", priv)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
