package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pocketbook/internal/analytics"
	"pocketbook/internal/chart"
	"pocketbook/internal/core"
)

func newSummaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show income, expenses, balance and the expense breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			txs, _ := a.ledger.Snapshot()
			return writeSummary(cmd.OutOrStdout(), core.Summarize(txs), analytics.ComputeCategoryTotals(txs))
		},
	}
}

func writeSummary(out io.Writer, s core.Summary, totals analytics.CategoryTotals) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Income\t%s\n", core.FormatAmount(s.Income))
	fmt.Fprintf(tw, "Expenses\t%s\n", core.FormatAmount(s.Expense))
	fmt.Fprintf(tw, "Balance\t%s\n", core.FormatAmount(s.Balance))

	if len(totals) > 0 {
		fmt.Fprintln(tw, "\t")
		total := totals.Total()
		for _, c := range totals.Sorted() {
			fmt.Fprintf(tw, "%s\t%s\n", chart.LegendLabel(c.Name, c.Amount, total), core.FormatAmount(c.Amount))
		}
	}
	return tw.Flush()
}
