package render_test

import (
	"testing"
	"time"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kopoklesz/EmployeeManager/internal/model"
	"github.com/Kopoklesz/EmployeeManager/internal/money"
	"github.com/Kopoklesz/EmployeeManager/internal/render"
)

func TestPDF_Render(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	inv := model.NewInvoice(now)
	inv.Number = "INV-0003"
	inv.Customer = &model.Customer{
		Name:       "Vevő Zrt.",
		PostalCode: "9400",
		City:       "Sopron",
		Address:    "Vár köz 2.",
	}
	inv.IssueDate = now
	inv.DeliveryDate = now
	inv.PaymentDeadline = now.AddDate(0, 0, 8)
	inv.PaymentMethod = model.PaymentMethodTransfer
	inv.Footer = "Köszönjük, hogy minket választott!"
	inv.AddItem(model.InvoiceItem{
		Description: "Fejlesztés",
		Unit:        "óra",
		Quantity:    dec.NewFromInt(2),
		UnitPrice:   dec.NewFromInt(1000),
		Vat:         money.RatedPercent(27),
	})

	settings := &model.CompanySettings{
		CompanyName: "Teszt Kft.",
		TaxNumber:   "11111111-2-42",
		PostalCode:  "1111",
		City:        "Budapest",
		Address:     "Teszt utca 1.",
		BankAccount: "11111111-22222222-33333333",
	}

	data, err := render.NewPDF().Render(inv, settings)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
