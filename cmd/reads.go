package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	dashboardrender "github.com/nissmart/dashboard-cli/internal/adapters/render/dashboard"
	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
)

func newBalanceCmd(app *app) *cobra.Command {
	var userID int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print a user's current balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := domain.UserID(userID)

			var balance domain.Balance
			fetch := func(ctx context.Context) error {
				primary, err := app.fetcher.FetchPrimary(ctx, domain.UserSubject(id))
				if err != nil {
					return err
				}
				var ok bool
				if balance, ok = primary.(domain.Balance); !ok {
					return fmt.Errorf("unexpected primary state %T", primary)
				}
				return nil
			}
			if err := fetchWithFeedback(cmd, asJSON, readTask("Balance", "Loading balance...", fetch)); err != nil {
				return readFailed(err)
			}

			if asJSON {
				return writeJSON(cmd, toBalanceJSON(balance))
			}

			currency := balance.Currency
			if currency == "" {
				currency = domain.DefaultCurrency
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s\n", userLabel(cmd.Context(), app, id), currency, balance.Amount.StringFixed(2))
			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newHistoryCmd(app *app) *cobra.Command {
	var userID int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a user's balance and transaction history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			subject := domain.UserSubject(domain.UserID(userID))

			var snapshot *domain.Snapshot
			fetch := func(ctx context.Context) error {
				var err error
				snapshot, err = app.fetcher.Fetch(ctx, subject)
				return err
			}
			if err := fetchWithFeedback(cmd, asJSON, readTask("History", "Loading history...", fetch)); err != nil {
				return readFailed(err)
			}

			if asJSON {
				balance, _ := snapshot.Balance()
				return writeJSON(cmd, historyJSON{
					Balance:      toBalanceJSON(balance),
					Transactions: toTransactionsJSON(snapshot.Transactions),
				})
			}

			users, err := app.directory.List(cmd.Context())
			if err != nil {
				return err
			}
			rendered, err := app.renderUser(application.UserDashboardState{
				Users:    users,
				Selected: subject,
				Session: application.SessionState{
					Subject:       subject,
					Snapshot:      snapshot,
					LastUpdatedAt: snapshot.FetchedAt,
				},
			}, dashboardrender.RenderOptions{Now: app.clock.Now()})
			if err != nil {
				return fmt.Errorf("render history: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

const loadFailedMessage = "Failed to load data"

func readFailed(err error) error {
	return &actionFailedError{message: domain.UserMessage(err, loadFailedMessage), err: err}
}
