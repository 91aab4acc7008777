package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	dashboardrender "github.com/nissmart/dashboard-cli/internal/adapters/render/dashboard"
	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
)

const metricsShutdownTimeout = 2 * time.Second

func newDashboardCmd(app *app) *cobra.Command {
	var userID int64
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live user dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dashboard := application.NewUserDashboard(app.fetcher, app.ledger, app.directory, app.dashboardConfig(), app.options()...)
			defer dashboard.Close()

			if err := dashboard.Load(ctx); err != nil {
				return err
			}
			if userID != 0 {
				if err := dashboard.Select(ctx, domain.UserID(userID)); err != nil {
					return err
				}
			}

			stop := startMetricsServer(app, metricsAddr)
			defer stop()

			return dashboardrender.RunUser(ctx, dashboard, dashboardrender.ProgramConfig{
				Clock:      app.clock,
				StaleAfter: app.staleAfter(),
			}, tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID to select on start")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", app.cfg.Metrics.Addr, "Serve Prometheus metrics on this address (empty: disabled)")

	return cmd
}

func newAdminCmd(app *app) *cobra.Command {
	var once bool
	var asJSON bool
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Show system-wide totals, daily volume and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if once || asJSON {
				return runAdminOnce(cmd, app, asJSON)
			}

			ctx := cmd.Context()
			dashboard := application.NewAdminDashboard(app.fetcher, app.dashboardConfig(), app.options()...)
			defer dashboard.Close()

			if err := dashboard.Start(ctx); err != nil {
				return err
			}

			stop := startMetricsServer(app, metricsAddr)
			defer stop()

			return dashboardrender.RunAdmin(ctx, dashboard, dashboardrender.ProgramConfig{
				Clock:      app.clock,
				StaleAfter: app.staleAfter(),
			}, tea.WithAltScreen(), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Fetch once, print and exit")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output (implies --once)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", app.cfg.Metrics.Addr, "Serve Prometheus metrics on this address (empty: disabled)")

	return cmd
}

func runAdminOnce(cmd *cobra.Command, app *app, asJSON bool) error {
	subject := domain.SystemSubject()

	var snapshot *domain.Snapshot
	fetch := func(ctx context.Context) error {
		var err error
		snapshot, err = app.fetcher.Fetch(ctx, subject)
		return err
	}
	if err := fetchWithFeedback(cmd, asJSON, readTask("System activity", "Loading system activity...", fetch)); err != nil {
		return fmt.Errorf("load system activity: %w", err)
	}

	state := application.ProjectAdmin(application.SessionState{
		Subject:       subject,
		Snapshot:      snapshot,
		LastUpdatedAt: snapshot.FetchedAt,
	}, app.cfg.Admin.FeedSize)

	if asJSON {
		return writeJSON(cmd, toAdminJSON(state))
	}

	rendered, err := app.renderAdmin(state, dashboardrender.RenderOptions{Now: app.clock.Now()})
	if err != nil {
		return fmt.Errorf("render admin view: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

// fetchWithFeedback runs task behind a spinner on stderr unless the output
// is JSON.
func fetchWithFeedback(cmd *cobra.Command, asJSON bool, task dashboardrender.Task) error {
	if asJSON {
		return task.Work(cmd.Context())
	}
	return dashboardrender.RunTask(cmd.Context(), cmd.ErrOrStderr(), task)
}

func readTask(title, label string, work func(context.Context) error) dashboardrender.Task {
	return dashboardrender.Task{
		Title: title,
		Label: label,
		Work:  work,
		Failure: func(err error) string {
			return domain.UserMessage(err, loadFailedMessage)
		},
	}
}

// startMetricsServer serves /metrics on addr until the returned stop func
// runs. An empty addr disables it.
func startMetricsServer(app *app, addr string) func() {
	if addr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Warn().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
	app.logger.Info().Str("addr", addr).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
