package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	dashboardrender "github.com/nissmart/dashboard-cli/internal/adapters/render/dashboard"
	"github.com/nissmart/dashboard-cli/internal/application"
	"github.com/nissmart/dashboard-cli/internal/domain"
)

// actionFailedError carries the message the dashboard would show while
// keeping the typed cause reachable through errors.Is and errors.As.
type actionFailedError struct {
	message string
	err     error
}

func (e *actionFailedError) Error() string {
	return e.message
}

func (e *actionFailedError) Unwrap() error {
	return e.err
}

type movementFlags struct {
	amount      string
	description string
	asJSON      bool
}

func (f *movementFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount, for example 50 or 12.50")
	cmd.Flags().StringVar(&f.description, "description", "", "Description (default depends on the action)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("amount")
}

func (f *movementFlags) parseAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(f.amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", f.amount)
	}
	return amount, nil
}

func newDepositCmd(app *app) *cobra.Command {
	var userID int64
	var flags movementFlags

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit funds into a user's wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := flags.parseAmount()
			if err != nil {
				return err
			}
			return runAction(cmd, app, domain.Deposit{
				UserID:      domain.UserID(userID),
				Amount:      amount,
				Description: flags.description,
			}, flags.asJSON)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newTransferCmd(app *app) *cobra.Command {
	var fromID int64
	var toID int64
	var flags movementFlags

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move funds between two users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := flags.parseAmount()
			if err != nil {
				return err
			}
			return runAction(cmd, app, domain.Transfer{
				From:        domain.UserID(fromID),
				To:          domain.UserID(toID),
				Amount:      amount,
				Description: flags.description,
			}, flags.asJSON)
		},
	}

	cmd.Flags().Int64Var(&fromID, "from", 0, "Source user ID")
	cmd.Flags().Int64Var(&toID, "to", 0, "Destination user ID")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newWithdrawCmd(app *app) *cobra.Command {
	var userID int64
	var flags movementFlags

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Withdraw funds from a user's wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			amount, err := flags.parseAmount()
			if err != nil {
				return err
			}
			return runAction(cmd, app, domain.Withdraw{
				UserID:      domain.UserID(userID),
				Amount:      amount,
				Description: flags.description,
			}, flags.asJSON)
		},
	}

	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// runAction submits one action through the same dispatcher the dashboard
// uses and prints the resulting notification.
func runAction(cmd *cobra.Command, app *app, action domain.Action, asJSON bool) error {
	toasts := application.NewNotificationQueue(app.clock, app.cfg.Notify.Duration)
	defer toasts.Close()

	dispatcher := application.NewActionDispatcher(app.ledger, toasts, nil, nil, app.clock, app.options()...)
	dispatcher.OnSuccess(func(ctx context.Context, outcome application.Outcome) {
		if outcome.User == nil {
			return
		}
		if err := app.directory.Save(ctx, *outcome.User); err != nil {
			app.logger.Warn().Err(err).Int64("user_id", int64(outcome.User.ID)).Msg("could not remember created user")
		}
	})

	var outcome application.Outcome
	submit := func(ctx context.Context) error {
		var err error
		outcome, err = dispatcher.Submit(ctx, action)
		return err
	}
	task := dashboardrender.Task{
		Title: action.Kind().Title(),
		Label: progressLabel(action.Kind()),
		Work:  submit,
		Failure: func(error) string {
			return dispatcher.LastError()
		},
	}
	if err := fetchWithFeedback(cmd, asJSON, task); err != nil {
		if message := dispatcher.LastError(); message != "" {
			return &actionFailedError{message: message, err: err}
		}
		return err
	}

	message := ""
	if active := toasts.Active(); len(active) > 0 {
		message = active[len(active)-1].Message
	}

	if asJSON {
		out := actionJSON{
			RequestID: outcome.Request.ID,
			Kind:      string(outcome.Request.Kind()),
			Message:   message,
		}
		if outcome.User != nil {
			user := toUserJSON(*outcome.User)
			out.User = &user
		}
		if outcome.Transaction != nil {
			tx := toTransactionJSON(*outcome.Transaction)
			out.Transaction = &tx
		}
		return writeJSON(cmd, out)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), message)
	return err
}

func progressLabel(kind domain.ActionKind) string {
	switch kind {
	case domain.ActionCreateUser:
		return "Creating user..."
	case domain.ActionDeposit:
		return "Submitting deposit..."
	case domain.ActionTransfer:
		return "Submitting transfer..."
	case domain.ActionWithdraw:
		return "Submitting withdrawal..."
	default:
		return "Submitting..."
	}
}
