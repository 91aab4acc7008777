package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nissmart/dashboard-cli/internal/domain"
)

func newUserCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create and list users",
	}

	cmd.AddCommand(
		newUserCreateCmd(app),
		newUserListCmd(app),
	)

	return cmd
}

func newUserCreateCmd(app *app) *cobra.Command {
	var name string
	var email string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account on the ledger and remember it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, app, domain.CreateUser{Name: name, Email: email}, asJSON)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (optional)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users created from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := app.directory.List(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				out := make([]userJSON, 0, len(users))
				for _, user := range users {
					out = append(out, toUserJSON(user))
				}
				return writeJSON(cmd, out)
			}

			for _, user := range users {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", user.ID, user.Name, user.Email)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

// userLabel names id the way the dashboard does when the directory knows
// the user.
func userLabel(ctx context.Context, app *app, id domain.UserID) string {
	user, err := app.directory.Get(ctx, id)
	if err != nil {
		return domain.UserSubject(id).Label()
	}
	return user.Label()
}
