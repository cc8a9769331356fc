package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodeasy/backend/config"
	"github.com/foodeasy/backend/internal/app"
	"github.com/foodeasy/backend/internal/logging"
	"github.com/foodeasy/backend/internal/types"
)

var migrationsDir string

func main() {
	root := &cobra.Command{
		Use:           "rollover",
		Short:         "Retire finished meal plans and generate the next week",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "directory holding the SQL migrations")
	root.AddCommand(newRunCmd(), newDaemonCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single rollover pass and print its summary as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			today := types.NormalizeDate(time.Now())
			if date != "" {
				parsed, err := types.ParseDate(date)
				if err != nil {
					return err
				}
				today = parsed
			}

			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, _ *zap.SugaredLogger) error {
				summary, err := a.Rollover.Run(ctx, today)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "run as of this date (YYYY-MM-DD), default today")
	return cmd
}

func newDaemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the rollover on a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app.App, log *zap.SugaredLogger) error {
				if err := a.Rollover.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				log.Info("received shutdown signal")

				stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
				defer cancel()
				return a.Rollover.Stop(stopCtx)
			})
		},
	}
}

func withApp(parent context.Context, fn func(context.Context, *app.App, *zap.SugaredLogger) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(config.GetEnvironment(), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := app.New(ctx, cfg, logger.With("component", "rollover"), migrationsDir)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a, logger)
}
