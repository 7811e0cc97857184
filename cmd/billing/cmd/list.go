package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	invoices, err := app.invoices.List(context.Background())
	if err != nil {
		return err
	}

	now := time.Now()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tCUSTOMER\tGROSS\tSTATUS")
	for _, inv := range invoices {
		customer := ""
		if inv.Customer != nil {
			customer = inv.Customer.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
			inv.ID, inv.Number, customer, inv.Totals.Gross, inv.Currency, inv.DisplayStatus(now))
	}
	return w.Flush()
}
