package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/core"
)

var (
	addDescription string
	addAmount      string
	addAccount     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Long: `Record one transaction dated on the reference date. Negative amounts are
outflows, positive amounts are inflows.

Example:
  ledger add --description "Pizza Hut order" --amount -450
  ledger add --date 2025-03-01 --description Salary --amount 40000`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addDescription, "description", "", "transaction description (required)")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "signed amount, e.g. -450 or 40000 (required)")
	addCmd.Flags().StringVar(&addAccount, "account", "", "account number")
	_ = addCmd.MarkFlagRequired("description")
	_ = addCmd.MarkFlagRequired("amount")
}

func runAdd(cmd *cobra.Command, args []string) error {
	amount, err := core.ParseAmount(addAmount)
	if err != nil {
		return fmt.Errorf("amount %q: %w", addAmount, err)
	}

	env, err := openEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	tx := core.Transaction{
		Date:        env.today,
		Description: addDescription,
		Amount:      amount,
		Account:     addAccount,
	}
	ref, err := env.backend.Backend.Append(cmd.Context(), tx)
	if err != nil {
		return err
	}

	params, err := cli.ForecastParams(env.cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s %s on %s as %s (%s)\n",
		tx.Description, params.Formatter.Format(tx.Amount), tx.Date, params.Categorizer.Categorize(tx.Description), ref)
	return nil
}
