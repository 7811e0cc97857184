package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var issueOutput string

var issueCmd = &cobra.Command{
	Use:   "issue <invoice-id>",
	Short: "Issue a draft invoice through the configured backend",
	Long: `Issue a draft: validate it, allocate the next invoice number, persist the
invoice as ISSUED and hand it to the configured billing backend. The number
survives a backend failure; rerun with the resend command to retry the
transmission.

Examples:
  billing issue inv_01J9ZK5T2V
  billing issue inv_01J9ZK5T2V --backend billingo
  billing issue inv_01J9ZK5T2V -o invoice.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runIssue,
}

func init() {
	rootCmd.AddCommand(issueCmd)

	issueCmd.Flags().StringVarP(&issueOutput, "output", "o", "", "Write the returned document to a file")
}

func runIssue(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	inv, res, err := app.invoices.Issue(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Issued %s as %s (status %s)\n", inv.ID, inv.Number, inv.Status)
	if res != nil && res.ExternalID != "" {
		fmt.Printf("Vendor document: %s\n", res.ExternalID)
	}
	if res != nil && res.DocumentURL != "" {
		fmt.Printf("Document URL: %s\n", res.DocumentURL)
	}

	if issueOutput != "" && res != nil && len(res.Document) > 0 {
		if err := os.WriteFile(issueOutput, res.Document, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote document to %s\n", issueOutput)
	}
	return nil
}
