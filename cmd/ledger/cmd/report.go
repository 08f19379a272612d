package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"ledger/internal/cli"
	"ledger/internal/forecast"
)

var (
	reportFormat string
	reportExport bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Build the ledger snapshot for the reference date",
	Long: `Build the daily sums, balance history, projection, category breakdown
and insight for the reference date.

The default output is JSON with exact decimal amounts. --format text prints
a short human-readable summary instead.

Example:
  ledger report
  ledger report --format text --export`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFormat, "format", "json", "output format: json or text")
	reportCmd.Flags().BoolVar(&reportExport, "export", false, "also write the balance series to the backend's projection output")
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFormat != "json" && reportFormat != "text" {
		return fmt.Errorf("unknown format %q: must be json or text", reportFormat)
	}

	ctx := cmd.Context()
	env, err := openEnvironment(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	svc, manager, err := cli.NewSnapshotService(env.cfg, env.backend.Backend)
	if err != nil {
		return err
	}
	defer manager.Stop()

	snap, err := svc.Snapshot(ctx, env.today)
	if err != nil {
		return err
	}

	if reportExport {
		if env.backend.Exporter == nil {
			env.logger.Warn("Backend has no projection output, skipping export", "backend", env.cfg.DataBackend)
		} else if err := env.backend.Exporter.WriteSeries(ctx, snap.Series()); err != nil {
			return fmt.Errorf("export series: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if reportFormat == "text" {
		return writeTextReport(out, snap, svc.Params())
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func writeTextReport(out io.Writer, snap forecast.Snapshot, p forecast.Params) error {
	f := p.Formatter

	fmt.Fprintf(out, "Ledger as of %s\n\n", snap.ReferenceDate)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Current balance:\t%s\n", f.Format(snap.CurrentBalance()))
	fmt.Fprintf(w, "Average daily spend:\t%s\n", f.Format(snap.AverageDailySpend))
	fmt.Fprintf(w, "Balance in %d days:\t%s\n", p.HorizonDays, f.Format(snap.ProjectedBalance()))
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nSpending by category (last %d days)\n", p.WindowDays)
	w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range snap.Breakdown {
		fmt.Fprintf(w, "  %s\t%s\t%s%%\t%s\n",
			c.Category, f.Format(c.Outflow), c.Share.StringFixed(1), plural(c.Count, "transaction"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(snap.Suggestions) > 0 {
		fmt.Fprintln(out, "\nSuggestions")
		for _, s := range snap.Suggestions {
			fmt.Fprintf(out, "  - %s\n", s.Text)
		}
	}

	fmt.Fprintf(out, "\n%s\n", snap.Insight.Text)
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return humanize.Comma(int64(n)) + " " + word + "s"
}

