package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ledger/internal/core"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List known accounts and their balances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		accounts, err := env.backend.Backend.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
			return nil
		}

		f := core.CurrencyFormatter{Symbol: env.cfg.CurrencySymbol, Decimals: int32(env.cfg.CurrencyDecimals)}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tNUMBER\tBALANCE")
		for _, a := range accounts {
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.Name, a.Number, f.Format(a.Balance))
		}
		return w.Flush()
	},
}
