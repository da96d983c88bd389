package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/gartstein/companydesk/internal/company/app"
	"github.com/gartstein/companydesk/internal/company/events"
	"github.com/gartstein/companydesk/internal/company/form"
	"github.com/gartstein/companydesk/internal/company/handlers"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/router"
	"github.com/gartstein/companydesk/internal/company/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:          "companydesk",
		Short:        "Company and employee record manager",
		Long:         `companydesk keeps company + employee records with rated skills and education history, served over HTTP or edited in the terminal.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newTUICmd(opts),
		newListCmd(opts),
		newEventsCmd(opts),
	)
	return rootCmd
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the record API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer env.Close()

			h := handlers.NewRecordHandler(env.service, env.catalog, env.logger)
			server := handlers.NewServer(env.cfg.HTTPPort, handlers.NewRouter(h, env.cfg.JWTSecret, env.logger), env.logger)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()
			return waitForShutdown(server, errCh, env.logger)
		},
	}
}

func newTUICmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Edit records in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer env.Close()

			confirmer := tui.NewConfirmer()
			shell := app.New(env.service, confirmer, form.Deps{
				Catalog:       env.catalog,
				Logger:        env.logger,
				FlashDuration: env.cfg.FlashDuration,
				NavigateDelay: env.cfg.NavigateDelay,
			}, env.logger)
			defer shell.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := shell.Start(ctx, router.ListRoute.Hash()); err != nil {
				return err
			}
			return tui.Run(ctx, shell, confirmer, env.logger)
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print records matching a query",
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setup(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer env.Close()

			records, err := env.service.SearchRecords(cmd.Context(), query)
			if err != nil {
				return err
			}
			printRecords(cmd, records)
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by company name, email or phone")
	return cmd
}

func newEventsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Tail record lifecycle events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfigAndLogger(opts, false)
			if err != nil {
				return err
			}
			defer syncLogger(logger)
			if len(cfg.KafkaBrokers) == 0 {
				return fmt.Errorf("KAFKA_BROKERS is not configured")
			}

			consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.GroupID, cfg.Topic, logger)
			defer consumer.Close()
			consumer.RegisterHandler(func(_ context.Context, e events.Event) error {
				id := ""
				if e.Record != nil {
					id = e.Record.ID
				}
				logger.Info("record event",
					zap.String("event_type", string(e.Type)),
					zap.String("record_id", id),
					zap.Int("version", e.Version),
					zap.Time("occurred_at", e.OccurredAt),
				)
				return nil
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			consumer.Run(ctx)
			return nil
		},
	}
}

func printRecords(cmd *cobra.Command, records []models.Record) {
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No companies added yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPANY\tEMAIL\tPHONE\tCREATED")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.CompanyName, r.CompanyEmail, r.CompanyPhone, r.CreatedAt)
	}
	_ = w.Flush()
}

// waitForShutdown blocks until an interrupt, SIGTERM or a server error, then shuts the server down.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	server.Stop()
	logger.Info("Server stopped properly")
	return nil
}
