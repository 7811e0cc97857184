package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kopoklesz/EmployeeManager/internal/service"
)

var createCmd = &cobra.Command{
	Use:   "create <draft.json>",
	Short: "Create a draft invoice from a JSON file",
	Long: `Create a new invoice in DRAFT from a JSON description. No invoice number
is assigned; the number is allocated at issuance.

Example draft.json:
  {
    "customer": {"name": "Minta Kft.", "postal_code": "1052", "city": "Budapest",
                 "address": "Váci utca 10.", "country": "HU"},
    "issue_date": "2026-03-01T00:00:00Z",
    "delivery_date": "2026-03-01T00:00:00Z",
    "payment_method": "TRANSFER",
    "currency": "HUF",
    "exchange_rate": "1",
    "items": [{"description": "Szolgáltatás", "unit": "db",
               "quantity": "2", "unit_price": "1000", "vat": {"rate": "27"}}]
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var in service.DraftInput
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("invalid draft file: %w", err)
	}

	app, err := newApp()
	if err != nil {
		return err
	}

	inv, err := app.invoices.CreateDraft(context.Background(), in)
	if err != nil {
		return err
	}

	fmt.Printf("Created draft %s (gross %s %s)\n", inv.ID, inv.Totals.Gross, inv.Currency)
	return nil
}
