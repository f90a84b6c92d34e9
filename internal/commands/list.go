package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"pocketbook/internal/core"
)

func newListCommand() *cobra.Command {
	var (
		f        core.Filter
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if from != "" {
				if f.From, err = core.ParseDate(from); err != nil {
					return err
				}
			}
			if to != "" {
				if f.To, err = core.ParseDate(to); err != nil {
					return err
				}
			}

			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			return writeList(cmd.OutOrStdout(), a.ledger.List(f))
		},
	}

	cmd.Flags().StringVar(&f.Type, "type", core.AllValues, "income, expense or all")
	cmd.Flags().StringVar(&f.Category, "category", core.AllValues, "category key or all")
	cmd.Flags().StringVarP(&f.Search, "search", "s", "", "case-insensitive search in description and category")
	cmd.Flags().StringVar(&from, "from", "", "earliest date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "latest date (YYYY-MM-DD)")

	return cmd
}

func writeList(out io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(out, "No transactions found")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION")
	for _, t := range txs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.Date, t.Type, core.DisplayName(t.Category), core.FormatSignedAmount(t.Type, t.Amount), t.Description)
	}
	return tw.Flush()
}
