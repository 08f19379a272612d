package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledger/internal/categorize"
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <description>...",
	Short: "Show the category each description maps to",
	Long: `Look each argument up in the keyword table (CATEGORIES_FILE, or the
built-in table) and print the category it maps to.

Example:
  ledger categorize "UBER TRIP 1234" "Amazon Prime" "Unknown shop"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		table, err := categorize.Load(cfg.CategoriesFile)
		if err != nil {
			return err
		}

		width := 0
		for _, a := range args {
			width = max(width, len(a))
		}
		for _, a := range args {
			fmt.Fprintf(cmd.OutOrStdout(), "%-*s  %s\n", width, a, table.Categorize(a))
		}
		return nil
	},
}
