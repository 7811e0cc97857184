package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resendCmd = &cobra.Command{
	Use:   "resend <invoice-id>",
	Short: "Retry transmission of an issued, unsent invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runResend,
}

func init() {
	rootCmd.AddCommand(resendCmd)
}

func runResend(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	inv, res, err := app.invoices.Resend(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Sent %s (status %s)\n", inv.Number, inv.Status)
	if res != nil && res.ExternalID != "" {
		fmt.Printf("Vendor document: %s\n", res.ExternalID)
	}
	return nil
}
