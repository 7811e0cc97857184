package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List the billing backends and their availability",
	RunE:  runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	active := app.selector.Select(app.cfg.Billing.Backend).Kind()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tAVAILABLE\tACTIVE")
	for _, b := range app.selector.All() {
		mark := ""
		if b.Kind() == active {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", b.Kind(), b.IsAvailable(), mark)
	}
	return w.Flush()
}
