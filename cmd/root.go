package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "nsd",
		Short:         "Nissmart dashboard CLI (nsd): wallets, transfers and system activity",
		Long:          "nsd is a terminal client for the Nissmart ledger service. It polls balances and transaction history, submits deposits, transfers and withdrawals, and shows a live admin view of system-wide activity.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}
	rootCmd.PersistentPostRun = func(_ *cobra.Command, _ []string) {
		app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newDashboardCmd(app),
		newAdminCmd(app),
		newUserCmd(app),
		newDepositCmd(app),
		newTransferCmd(app),
		newWithdrawCmd(app),
		newBalanceCmd(app),
		newHistoryCmd(app),
	)

	return rootCmd
}
