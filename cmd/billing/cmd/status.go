package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var cancelReason string

var payCmd = &cobra.Command{
	Use:   "pay <invoice-id>",
	Short: "Mark an invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		inv, err := app.invoices.MarkPaid(context.Background(), args[0], nil)
		if err != nil {
			return err
		}
		fmt.Printf("Marked %s as paid\n", inv.Number)
		return nil
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <invoice-id>",
	Short: "Cancel an invoice (vendor-side too when already sent)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		inv, err := app.invoices.Cancel(context.Background(), args[0], cancelReason)
		if err != nil {
			return err
		}
		fmt.Printf("Cancelled %s\n", inv.Number)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(payCmd)
	rootCmd.AddCommand(cancelCmd)

	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "Cancellation reason passed to the vendor")
}
